// Package models defines the domain records of the course catalog viewer.
//
// The package contains:
//   - [Course] : a single learning unit as stored in the remote courses table
//   - [Status] : the completion enumeration (unchecked, checked)
//   - [CourseInput] : the insert shape used by the CSV bulk loader
//   - [SourceState] : which data source the catalog currently shows and whether the remote answered
//
// [SampleCourses] returns the fixed fallback dataset the catalog boots with before any remote data arrives.
package models
