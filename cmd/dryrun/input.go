package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"

	"exam_allocation_backend/internals/features/allocation/dto"
	"exam_allocation_backend/internals/features/allocation/engine"
	"exam_allocation_backend/internals/features/allocation/memstore"
)

type DryRunInput struct {
	Timezone string         `mapstructure:"timezone"`
	Seed     *uint64        `mapstructure:"seed"`
	Rooms    []RoomInput    `mapstructure:"rooms"`
	Faculty  []FacultyInput `mapstructure:"faculty"`
	Exam     ExamInput      `mapstructure:"exam"`
}

type RoomInput struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Capacity int    `mapstructure:"capacity"`
}

type FacultyInput struct {
	ID                  string `mapstructure:"id"`
	Name                string `mapstructure:"name"`
	Email               string `mapstructure:"email"`
	Designation         string `mapstructure:"designation"`
	PreviousAllocations int    `mapstructure:"previous_allocations"`
	Available           *bool  `mapstructure:"available"`
}

// ExamInput: either a single semester (semester + subjects) or a semesters list.
type ExamInput struct {
	Name      string          `mapstructure:"name"`
	Semester  int             `mapstructure:"semester"`
	Subjects  []SubjectInput  `mapstructure:"subjects"`
	Semesters []SemesterInput `mapstructure:"semesters"`
}

type SemesterInput struct {
	Number   int            `mapstructure:"number"`
	Name     string         `mapstructure:"name"`
	Subjects []SubjectInput `mapstructure:"subjects"`
}

type SubjectInput struct {
	Code          string   `mapstructure:"code"`
	Name          string   `mapstructure:"name"`
	Date          string   `mapstructure:"date"`
	StartTime     string   `mapstructure:"start_time"`
	EndTime       string   `mapstructure:"end_time"`
	TotalStudents int      `mapstructure:"total_students"`
	Rooms         []string `mapstructure:"rooms"` // room id or room name
}

func InputFromJson(file string) (DryRunInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return DryRunInput{}, err
	}
	var inputJson map[string]any
	if err := sonic.Unmarshal(bytes, &inputJson); err != nil {
		return DryRunInput{}, fmt.Errorf("decode %s: %w", file, err)
	}

	var input DryRunInput
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &input,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return DryRunInput{}, err
	}
	if err := dec.Decode(inputJson); err != nil {
		return DryRunInput{}, fmt.Errorf("decode %s: %w", file, err)
	}
	return input, nil
}

// Load seeds store with the rooms and faculty and returns the exam request over them.
func (in DryRunInput) Load(store *memstore.Store) (dto.CreateExamRequest, error) {
	roomByName := map[string]uuid.UUID{}
	for i, r := range in.Rooms {
		id, err := optionalUUID(r.ID)
		if err != nil {
			return dto.CreateExamRequest{}, fmt.Errorf("rooms[%d]: %w", i, err)
		}
		room := store.AddRoom(engine.Room{ID: id, Name: r.Name, Capacity: r.Capacity})
		roomByName[strings.ToLower(r.Name)] = room.ID
	}

	facultyIDs := make([]uuid.UUID, 0, len(in.Faculty))
	for i, f := range in.Faculty {
		id, err := optionalUUID(f.ID)
		if err != nil {
			return dto.CreateExamRequest{}, fmt.Errorf("faculty[%d]: %w", i, err)
		}
		d, err := engine.ParseDesignation(f.Designation)
		if err != nil {
			return dto.CreateExamRequest{}, fmt.Errorf("faculty[%d]: %w", i, err)
		}
		added := store.AddFaculty(engine.Faculty{
			ID: id, Name: f.Name, Email: f.Email, Designation: d,
			PreviousAllocations: f.PreviousAllocations,
			Available:           f.Available == nil || *f.Available,
		})
		facultyIDs = append(facultyIDs, added.ID)
	}

	listed := len(in.Exam.Semesters) > 0
	if listed && len(in.Exam.Subjects) > 0 {
		return dto.CreateExamRequest{}, fmt.Errorf("exam: use either subjects or semesters, not both")
	}
	semesters := in.Exam.Semesters
	if !listed {
		semesters = []SemesterInput{{Number: in.Exam.Semester, Subjects: in.Exam.Subjects}}
	}

	out := make([]dto.SemesterRequest, 0, len(semesters))
	for i, sem := range semesters {
		req := dto.SemesterRequest{Number: max(sem.Number, 1), Name: sem.Name}
		for j, s := range sem.Subjects {
			rooms := make([]uuid.UUID, 0, len(s.Rooms))
			for _, ref := range s.Rooms {
				if id, err := uuid.Parse(ref); err == nil {
					rooms = append(rooms, id)
					continue
				}
				id, ok := roomByName[strings.ToLower(ref)]
				if !ok {
					return dto.CreateExamRequest{}, fmt.Errorf("%s: unknown room %q", subjectPath(listed, i, j), ref)
				}
				rooms = append(rooms, id)
			}
			req.Subjects = append(req.Subjects, dto.SubjectRequest{
				Code: s.Code, Name: lo.Ternary(s.Name == "", s.Code, s.Name), Date: s.Date,
				StartTime: s.StartTime, EndTime: s.EndTime, TotalStudents: s.TotalStudents, RoomIDs: rooms,
			})
		}
		out = append(out, req)
	}

	return dto.CreateExamRequest{
		ExamName:   lo.Ternary(in.Exam.Name == "", "Dry run", in.Exam.Name),
		FacultyIDs: facultyIDs,
		Semesters:  out,
	}, nil
}

func subjectPath(listed bool, sem, subject int) string {
	if listed {
		return fmt.Sprintf("exam.semesters[%d].subjects[%d]", sem, subject)
	}
	return fmt.Sprintf("exam.subjects[%d]", subject)
}

func optionalUUID(s string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}
