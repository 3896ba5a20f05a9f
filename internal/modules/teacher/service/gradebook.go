package service

import (
	"math"

	"anoa.com/educonnect/internal/entity"
	"anoa.com/educonnect/internal/modules/teacher/dto"
	"github.com/google/uuid"
)

const cellMissing = "missing"

type submissionKey struct {
	assignmentID uuid.UUID
	studentID    uuid.UUID
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// BuildGradebook computes one row per student over the given assignments.
// Cell percentages are exact; only the row average is rounded. Ungraded and missing submissions count toward neither earned nor possible
// marks, so a student with nothing graded averages 0.
func BuildGradebook(students []*entity.User, assignments []*entity.Assignment, submissions []*entity.Submission) []dto.GradebookRow {
	byKey := make(map[submissionKey]*entity.Submission, len(submissions))
	for _, s := range submissions {
		byKey[submissionKey{s.AssignmentID, s.StudentID}] = s
	}

	rows := make([]dto.GradebookRow, 0, len(students))
	for _, student := range students {
		row := dto.GradebookRow{
			Student: student,
			Grades:  make([]dto.GradebookCell, 0, len(assignments)),
		}

		for _, a := range assignments {
			cell := dto.GradebookCell{
				AssignmentID: a.ID,
				Title:        a.Title,
				MaxMarks:     a.MaxMarks,
				Status:       cellMissing,
			}

			if sub, ok := byKey[submissionKey{a.ID, student.ID}]; ok {
				cell.Status = sub.Status
				if sub.IsGraded() && a.MaxMarks > 0 {
					marks := *sub.Marks
					pct := marks / float64(a.MaxMarks) * 100
					cell.Marks = &marks
					cell.Percentage = &pct

					row.TotalMarks += marks
					row.TotalPossible += a.MaxMarks
					row.GradedCount++
				}
			}
			row.Grades = append(row.Grades, cell)
		}

		if row.TotalPossible > 0 {
			row.Average = round1(row.TotalMarks / float64(row.TotalPossible) * 100)
		}
		rows = append(rows, row)
	}
	return rows
}

// Review summarises the submissions of one assignment.
func Review(totalStudents int, submissions []*entity.Submission) dto.ReviewStats {
	stats := dto.ReviewStats{
		TotalStudents:  totalStudents,
		SubmittedCount: len(submissions),
	}

	var sum float64
	for _, s := range submissions {
		if s.IsGraded() {
			stats.GradedCount++
			sum += *s.Marks
		}
	}
	if stats.GradedCount > 0 {
		stats.AverageMarks = round1(sum / float64(stats.GradedCount))
	}
	return stats
}
