package model

// All lists every allocation table for AutoMigrate, parents first.
func All() []any {
	return []any{
		&RoomModel{},
		&UserModel{},
		&ExamModel{},
		&ExamSemesterModel{},
		&ExamSubjectModel{},
		&RoomAllocationModel{},
		&InvigilationModel{},
	}
}

// IndexStatements back the overlap and slot-key lookups.
var IndexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_room_allocations_room_date
		ON room_allocations (room_allocation_room_id, room_allocation_date, room_allocation_start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_room_allocations_exam
		ON room_allocations (room_allocation_exam_id, room_allocation_date, room_allocation_start_time)`,
	`CREATE INDEX IF NOT EXISTS idx_invigilations_slot
		ON invigilations (invigilation_room_id, invigilation_date, invigilation_start_time, invigilation_end_time)`,
	`CREATE INDEX IF NOT EXISTS idx_invigilations_faculty_date
		ON invigilations (invigilation_faculty_id, invigilation_date)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invigilations_subject_slot
		ON invigilations (invigilation_subject_id, invigilation_room_id, invigilation_date, invigilation_start_time, invigilation_end_time)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_rooms_building_number
		ON rooms (room_building, room_number) WHERE room_deleted_at IS NULL`,
}
