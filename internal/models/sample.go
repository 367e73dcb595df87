package models

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/coursecat/internal/shared"
)

type sampleRow struct {
	id          int64
	title       string
	instructor  string
	category    string
	subcategory string
	url         string
	status      Status
}

var sampleRows = []sampleRow{
	{1, "Airway assessment and management part 2", "Dr. Julius Azadong Nimbare", "Anaesthesia", "151.000", "https://youtu.be/L6ttFpdexgs", StatusChecked},
	{2, "Airway assessment and management part 1", "Dr. Julius Azadong Nimbare", "Anaesthesia", "145.000", "https://youtu.be/dQw4w9WgXcQ", StatusUnchecked},
	{3, "Basic Surgical Techniques", "Dr. Sarah Johnson", "Surgery", "120.000", "https://youtu.be/example1", StatusChecked},
	{4, "Advanced Cardiac Procedures", "Dr. Michael Chen", "Cardiology", "180.000", "https://youtu.be/example2", StatusUnchecked},
	{5, "Pediatric Emergency Care", "Dr. Emily Rodriguez", "Pediatrics", "90.000", "https://youtu.be/example3", StatusChecked},
	{6, "Orthopedic Assessment", "Dr. James Wilson", "Orthopedics", "135.000", "https://youtu.be/example4", StatusUnchecked},
	{7, "Neurological Examination", "Dr. Lisa Thompson", "Neurology", "165.000", "https://youtu.be/example5", StatusChecked},
	{8, "Respiratory Physiology", "Dr. Robert Davis", "Pulmonology", "110.000", "https://youtu.be/example6", StatusUnchecked},
	{9, "Infectious Disease Management", "Dr. Maria Garcia", "Infectious Disease", "140.000", "https://youtu.be/example7", StatusChecked},
	{10, "Dermatology Basics", "Dr. David Kim", "Dermatology", "95.000", "https://youtu.be/example8", StatusUnchecked},
}

// SampleCourses returns the built-in fallback dataset with both timestamps set to now.
//
// Every call returns fresh values, so callers may keep or mutate the result.
func SampleCourses(now time.Time) []Course {
	courses := make([]Course, len(sampleRows))
	for i, r := range sampleRows {
		sub := r.subcategory
		courses[i] = Course{
			ID:          r.id,
			Title:       r.title,
			Instructor:  r.instructor,
			Category:    r.category,
			Subcategory: &sub,
			CourseURL:   r.url,
			Status:      r.status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return courses
}

// sampleFile is the TOML layout of a user supplied sample dataset.
type sampleFile struct {
	Courses []Course `toml:"courses"`
}

// LoadSampleFile reads a dataset of [[courses]] tables from a TOML file.
//
// Missing timestamps default to now. Duplicate or non-positive ids are rejected so the catalog keeps unique ids.
func LoadSampleFile(path string, now time.Time) ([]Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample file: %w", err)
	}

	var f sampleFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sample file: %w", err)
	}

	seen := make(map[int64]bool, len(f.Courses))
	for i := range f.Courses {
		c := &f.Courses[i]
		if c.ID <= 0 {
			return nil, fmt.Errorf("%w: course %q has no positive id", shared.ErrInvalidInput, c.Title)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate course id %d", shared.ErrInvalidInput, c.ID)
		}
		seen[c.ID] = true

		if c.Status == "" {
			c.Status = StatusUnchecked
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = c.CreatedAt
		}
	}

	return f.Courses, nil
}
