package catalog

import (
	"github.com/desertthunder/coursecat/internal/models"
)

// Category is one catalog entry: a category name and its courses in source order.
type Category struct {
	Name    string          `json:"name"`
	Courses []models.Course `json:"courses"`
}

// Completed counts the checked courses in the category.
func (c Category) Completed() int {
	n := 0
	for _, course := range c.Courses {
		if course.Status.Completed() {
			n++
		}
	}
	return n
}

// Catalog maps category names to courses, ordered by first occurrence.
type Catalog struct {
	categories []Category
	index      map[string]int
}

// GroupByCategory builds a [Catalog] in a single pass over courses.
//
// Category order is first-seen order and course order within a category is source order.
// Courses with an empty category land in [models.DefaultCategory].
func GroupByCategory(courses []models.Course) Catalog {
	cat := Catalog{index: make(map[string]int)}
	for _, c := range courses {
		key := c.CategoryKey()
		i, ok := cat.index[key]
		if !ok {
			i = len(cat.categories)
			cat.index[key] = i
			cat.categories = append(cat.categories, Category{Name: key})
		}
		cat.categories[i].Courses = append(cat.categories[i].Courses, c.Clone())
	}
	return cat
}

// Len returns the number of categories.
func (c Catalog) Len() int { return len(c.categories) }

// Names returns the category names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.categories))
	for i, cat := range c.categories {
		names[i] = cat.Name
	}
	return names
}

// First returns the first category name, if any.
func (c Catalog) First() (string, bool) {
	if len(c.categories) == 0 {
		return "", false
	}
	return c.categories[0].Name, true
}

// Get returns the courses of a category.
func (c Catalog) Get(name string) ([]models.Course, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.categories[i].Courses, true
}

// Categories returns a deep copy of the catalog entries in order.
func (c Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		courses := make([]models.Course, len(cat.Courses))
		for j, course := range cat.Courses {
			courses[j] = course.Clone()
		}
		out[i] = Category{Name: cat.Name, Courses: courses}
	}
	return out
}

// CompletedCount returns the checked and total course counts of a category.
func (c Catalog) CompletedCount(name string) (done, total int) {
	i, ok := c.index[name]
	if !ok {
		return 0, 0
	}
	cat := c.categories[i]
	return cat.Completed(), len(cat.Courses)
}
