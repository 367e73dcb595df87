package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/coursecat/internal/catalog"
	"github.com/desertthunder/coursecat/internal/models"
)

var (
	_ list.Item = categoryItem{}
	_ list.Item = courseItem{}
)

// categoryItem is a catalog header row.
type categoryItem struct {
	name     string
	done     int
	total    int
	expanded bool
}

func (i categoryItem) FilterValue() string { return i.name }
func (i categoryItem) Title() string {
	marker := "▸"
	if i.expanded {
		marker = "▾"
	}
	return fmt.Sprintf("%s %s (%d/%d)", marker, i.name, i.done, i.total)
}
func (i categoryItem) Description() string {
	if i.total == 1 {
		return "1 course"
	}
	return fmt.Sprintf("%d courses", i.total)
}

// courseItem wraps [models.Course] to implement [list.Item].
type courseItem struct {
	course models.Course
	active bool
}

func (i courseItem) FilterValue() string { return i.course.Title }
func (i courseItem) Title() string {
	check := "[ ]"
	if i.course.Status.Completed() {
		check = "[x]"
	}
	title := fmt.Sprintf("  %s %s", check, i.course.Title)
	if i.active {
		title += " •"
	}
	return title
}
func (i courseItem) Description() string {
	desc := "      " + i.course.Instructor
	if sub := i.course.SubcategoryText(); sub != "" {
		desc = fmt.Sprintf("%s • %s", desc, sub)
	}
	return desc
}

// catalogItems flattens the catalog into header rows followed by the courses of expanded categories.
func catalogItems(categories []catalog.Category, expanded []string, active *models.Course) []list.Item {
	open := make(map[string]bool, len(expanded))
	for _, name := range expanded {
		open[name] = true
	}

	items := make([]list.Item, 0, len(categories))
	for _, cat := range categories {
		items = append(items, categoryItem{
			name:     cat.Name,
			done:     cat.Completed(),
			total:    len(cat.Courses),
			expanded: open[cat.Name],
		})
		if !open[cat.Name] {
			continue
		}
		for _, c := range cat.Courses {
			items = append(items, courseItem{course: c, active: active != nil && active.ID == c.ID})
		}
	}
	return items
}
