package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/coursecat/internal/models"
)

// Column positions in the course spreadsheet export.
const (
	colTitle       = 0
	colInstructor  = 1
	colCategory    = 2
	colSubcategory = 3
	colURL         = 6
	colStatus      = 7

	minColumns = 7
)

// CSVResult is what [ParseCourseCSV] found in a spreadsheet export.
type CSVResult struct {
	Courses       []models.CourseInput
	Skipped       int // Rows dropped for missing fields
	UnknownStatus int // Rows kept as unchecked because the status column held unknown text
}

// ParseCourseCSV reads a course spreadsheet export and returns the rows worth inserting.
//
// The first line is a header. Rows with fewer than seven fields, or with an empty title, instructor, category or url,
// are skipped. An unknown status reads as unchecked.
func ParseCourseCSV(r io.Reader) (*CSVResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	result := &CSVResult{}
	header := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if header {
			header = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		in, known, ok := courseFromFields(ParseCSVLine(line))
		if !ok {
			result.Skipped++
			continue
		}
		if !known {
			result.UnknownStatus++
		}
		result.Courses = append(result.Courses, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return result, nil
}

// ParseCSVLine splits one line on commas outside double quotes and trims each field.
//
// Quotes toggle quoting and are dropped, so `"a, b",c` yields ["a, b" "c"]. Escaped quotes are not supported.
func ParseCSVLine(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(values, strings.TrimSpace(current.String()))
}

// courseFromFields reports whether the status was recognised and whether the row is usable at all.
func courseFromFields(values []string) (in models.CourseInput, knownStatus, ok bool) {
	if len(values) < minColumns {
		return models.CourseInput{}, false, false
	}
	if values[colTitle] == "" || values[colInstructor] == "" || values[colCategory] == "" || values[colURL] == "" {
		return models.CourseInput{}, false, false
	}

	in = models.CourseInput{
		Title:      values[colTitle],
		Instructor: values[colInstructor],
		Category:   values[colCategory],
		CourseURL:  values[colURL],
		Status:     models.StatusUnchecked,
	}
	if sub := values[colSubcategory]; sub != "" {
		in.Subcategory = &sub
	}
	knownStatus = true
	if len(values) > colStatus {
		in.Status, knownStatus = models.StatusOrUnchecked(values[colStatus])
	}
	return in, knownStatus, true
}

// Batches splits rows into consecutive chunks of at most size rows.
func Batches[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = len(rows)
	}
	var out [][]T
	for i := 0; i < len(rows); i += size {
		end := min(i+size, len(rows))
		out = append(out, rows[i:end])
	}
	return out
}
