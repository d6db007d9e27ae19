package greptree

import (
	"fmt"
	"sort"
	"strings"

	"git.home.luguber.info/inful/apiforge/internal/entity"
)

// Index files are derived purely from the merged model; regenerating over
// unchanged input must produce identical bytes, so every grouping iterates
// in sorted order.

func (r *Renderer) byCategoryIndex(types []*entity.Type) string {
	groups := make(map[string][]*entity.Type)
	for _, t := range types {
		groups[t.Category] = append(groups[t.Category], t)
	}
	categories := make([]string, 0, len(groups))
	for cat := range groups {
		if cat != "" {
			categories = append(categories, cat)
		}
	}
	sort.Strings(categories)

	var md strings.Builder
	md.WriteString("# API Types by Functional Category\n\n")
	md.WriteString("This index organizes all API types by their functional categories.\n\n")

	writeGroup := func(label string, group []*entity.Type) {
		fmt.Fprintf(&md, "## %s\n\n", label)
		fmt.Fprintf(&md, "**%d types**\n\n", len(group))
		for _, t := range group {
			fmt.Fprintf(&md, "- [%s](%s)", t.Name, overviewLink(t))
			if t.Description != "" {
				fmt.Fprintf(&md, " - %s", truncate(r.rewrite(t.Description), 100))
			}
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}

	for _, cat := range categories {
		writeGroup(cat, groups[cat])
	}
	if uncategorized := groups[""]; len(uncategorized) > 0 {
		writeGroup("Uncategorized", uncategorized)
	}
	return md.String()
}

func byAssemblyIndex(types []*entity.Type) string {
	groups := make(map[string][]*entity.Type)
	for _, t := range types {
		groups[t.Assembly] = append(groups[t.Assembly], t)
	}
	assemblies := make([]string, 0, len(groups))
	for asm := range groups {
		assemblies = append(assemblies, asm)
	}
	sort.Strings(assemblies)

	var md strings.Builder
	md.WriteString("# API Types by Assembly\n\n")
	md.WriteString("This index organizes all API types by their assembly.\n\n")

	for _, asm := range assemblies {
		group := groups[asm]
		regular, enums := 0, 0
		for _, t := range group {
			if t.IsEnum {
				enums++
			} else {
				regular++
			}
		}
		fmt.Fprintf(&md, "## %s\n\n", asm)
		fmt.Fprintf(&md, "**%d types**\n\n", len(group))
		fmt.Fprintf(&md, "- **Regular Types**: %d\n", regular)
		fmt.Fprintf(&md, "- **Enumerations**: %d\n\n", enums)
		for _, t := range group {
			if t.IsEnum {
				fmt.Fprintf(&md, "- [%s](%s) (enum)\n", t.Name, overviewLink(t))
			} else {
				props, methods := memberCounts(t)
				fmt.Fprintf(&md, "- [%s](%s) (%d props, %d methods)\n", t.Name, overviewLink(t), props, methods)
			}
		}
		md.WriteString("\n")
	}
	return md.String()
}

func statisticsIndex(types []*entity.Type) string {
	totalEnums, totalProps, totalMethods, totalEnumMembers := 0, 0, 0, 0
	for _, t := range types {
		if t.IsEnum {
			totalEnums++
		}
		props, methods := memberCounts(t)
		totalProps += props
		totalMethods += methods
		totalEnumMembers += len(t.EnumMembers)
	}

	var md strings.Builder
	md.WriteString("# API Documentation Statistics\n\n")
	md.WriteString("## Overview\n\n")
	fmt.Fprintf(&md, "- **Total Types**: %d\n", len(types))
	fmt.Fprintf(&md, "  - Regular Types: %d\n", len(types)-totalEnums)
	fmt.Fprintf(&md, "  - Enumerations: %d\n", totalEnums)
	fmt.Fprintf(&md, "- **Total Properties**: %d\n", totalProps)
	fmt.Fprintf(&md, "- **Total Methods**: %d\n", totalMethods)
	fmt.Fprintf(&md, "- **Total Enumeration Members**: %d\n\n", totalEnumMembers)

	largest := make([]*entity.Type, 0, len(types))
	for _, t := range types {
		if !t.IsEnum {
			largest = append(largest, t)
		}
	}
	sort.Slice(largest, func(i, j int) bool {
		pi, mi := memberCounts(largest[i])
		pj, mj := memberCounts(largest[j])
		if pi+mi != pj+mj {
			return pi+mi > pj+mj
		}
		return largest[i].Name < largest[j].Name
	})
	if len(largest) > 20 {
		largest = largest[:20]
	}

	md.WriteString("## Largest Types by Member Count\n\n")
	md.WriteString("| Type | Properties | Methods | Total |\n")
	md.WriteString("|------|------------|---------|-------|\n")
	for _, t := range largest {
		props, methods := memberCounts(t)
		fmt.Fprintf(&md, "| [%s](%s) | %d | %d | %d |\n", t.Name, overviewLink(t), props, methods, props+methods)
	}
	md.WriteString("\n")
	return md.String()
}

func overviewLink(t *entity.Type) string {
	return fmt.Sprintf("../%s/%s/_overview.md", typeBucket(t), SanitizeFilename(t.Name))
}

func truncate(s string, max int) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
