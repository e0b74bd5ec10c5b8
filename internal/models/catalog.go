package models

// CatalogSubject is the display data the catalog holds for a subject.
type CatalogSubject struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// CatalogInstructor is the display data the catalog holds for an instructor.
type CatalogInstructor struct {
	ID       string  `db:"id" json:"id"`
	FullName string  `db:"full_name" json:"full_name"`
	Email    *string `db:"email" json:"email,omitempty"`
}

// CatalogRoom is the display data the catalog holds for a room.
type CatalogRoom struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Capacity *int   `db:"capacity" json:"capacity,omitempty"`
}

// CatalogRefs lists the catalog ids referenced by a set of schedule entries.
type CatalogRefs struct {
	SubjectIDs    []string
	InstructorIDs []string
	RoomIDs       []string
}

// Empty reports whether there is nothing to look up.
func (r CatalogRefs) Empty() bool {
	return len(r.SubjectIDs) == 0 && len(r.InstructorIDs) == 0 && len(r.RoomIDs) == 0
}

// RefsOf collects the distinct catalog ids referenced by entries.
func RefsOf(entries ...ScheduleEntry) CatalogRefs {
	var refs CatalogRefs
	seen := make(map[string]struct{})
	add := func(kind, id string, dst *[]string) {
		if id == "" {
			return
		}
		key := kind + ":" + id
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		*dst = append(*dst, id)
	}
	for _, entry := range entries {
		add("s", entry.SubjectID, &refs.SubjectIDs)
		add("i", entry.InstructorID, &refs.InstructorIDs)
		add("r", entry.Room(), &refs.RoomIDs)
	}
	return refs
}

// CatalogIndex resolves catalog ids to display records. Missing ids are simply absent.
type CatalogIndex struct {
	Subjects    map[string]CatalogSubject
	Instructors map[string]CatalogInstructor
	Rooms       map[string]CatalogRoom
}

// NewCatalogIndex returns an empty index.
func NewCatalogIndex() *CatalogIndex {
	return &CatalogIndex{
		Subjects:    map[string]CatalogSubject{},
		Instructors: map[string]CatalogInstructor{},
		Rooms:       map[string]CatalogRoom{},
	}
}
