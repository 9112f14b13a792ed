package report

import (
	"bytes"
	"fmt"

	"github.com/openstax/rope/internal/model"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Course Builds"

// WriteCourseBuilds renders all course builds as a spreadsheet for district
// staff. districts maps district id to name.
func WriteCourseBuilds(builds []model.CourseBuild, districts map[int64]string) (*bytes.Buffer, error) {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := []interface{}{
		"Instructor", "Email", "District", "Academic Year",
		"Course Name", "Shortname", "Status", "Course ID", "Enrollment URL",
	}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, build := range builds {
		courseID := ""
		if build.CourseID != nil {
			courseID = fmt.Sprintf("%d", *build.CourseID)
		}
		enrollmentURL := ""
		if build.CourseEnrollmentURL != nil {
			enrollmentURL = *build.CourseEnrollmentURL
		}

		row := []interface{}{
			build.InstructorFirstName + " " + build.InstructorLastName,
			build.InstructorEmail,
			districts[build.SchoolDistrictID],
			build.AcademicYear,
			build.CourseName,
			build.CourseShortname,
			string(build.Status),
			courseID,
			enrollmentURL,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	return file.WriteToBuffer()
}
