// package formatter converts course URLs into embeddable form, parses spreadsheet exports for the bulk loader, and
// exports the catalog to CSV, Markdown and plain text.
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/coursecat/internal/catalog"
	"github.com/desertthunder/coursecat/internal/models"
	"github.com/desertthunder/coursecat/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, markdown (or md) and txt (or text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ExportToCSV writes one row per course with columns: ID, Title, Instructor, Category, Subcategory, URL, Status,
// Updated
func ExportToCSV(courses []models.Course) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Instructor", "Category", "Subcategory", "URL", "Status", "Updated"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range courses {
		record := []string{
			strconv.FormatInt(c.ID, 10),
			c.Title,
			c.Instructor,
			c.Category,
			c.SubcategoryText(),
			c.CourseURL,
			c.Status.String(),
			formatTime(c.UpdatedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders the catalog as a checklist grouped by category
func ExportToMarkdown(title string, categories []catalog.Category) ([]byte, error) {
	var buf bytes.Buffer

	total, done := 0, 0
	for _, cat := range categories {
		total += len(cat.Courses)
		done += cat.Completed()
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Courses**: %d\n", total))
	buf.WriteString(fmt.Sprintf("**Completed**: %d/%d\n\n", done, total))

	for _, cat := range categories {
		buf.WriteString(fmt.Sprintf("## %s (%d/%d)\n\n", cat.Name, cat.Completed(), len(cat.Courses)))
		for _, c := range cat.Courses {
			mark := " "
			if c.Status.Completed() {
				mark = "x"
			}
			subPart := ""
			if sub := c.SubcategoryText(); sub != "" {
				subPart = fmt.Sprintf(" (%s)", sub)
			}
			buf.WriteString(fmt.Sprintf("- [%s] [%s](%s) - %s%s\n", mark, c.Title, EmbedURL(c.CourseURL), c.Instructor, subPart))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders the catalog as plain text
func ExportToText(categories []catalog.Category) ([]byte, error) {
	var buf bytes.Buffer

	for i, cat := range categories {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("%s: %d/%d completed\n", cat.Name, cat.Completed(), len(cat.Courses)))
		for j, c := range cat.Courses {
			buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", j+1, c.Title, c.Instructor, c.Status))
		}
	}

	return buf.Bytes(), nil
}

// Export renders the snapshot in the given format.
func Export(snap catalog.Snapshot, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(snap.Courses)
	case FormatMarkdown:
		return ExportToMarkdown("Course Catalog", snap.Categories)
	case FormatText:
		return ExportToText(snap.Categories)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes the snapshot to path in the given format.
//
// Defaults to courses.{ext} in the working directory.
func WriteExport(snap catalog.Snapshot, format Format, path string) (string, error) {
	if path == "" {
		path = "courses." + format.Extension()
	}

	data, err := Export(snap, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
