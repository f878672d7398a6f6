package records

import (
	"strings"
	"testing"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	students := []Student{
		{ID: 1, Name: "Anitha", DOB: "2012-04-01", Class: "Class 7", City: "Delhi"},
		{ID: 2, Name: "Kumar, Jr.", BloodGroup: "O+", AdditionalNotes: "line one\nline two"},
	}

	data, err := encodeDataset(students)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, err := decodeDataset(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0] != students[0] {
		t.Errorf("record 1 mismatch: %+v vs %+v", got[0], students[0])
	}
	if got[1] != students[1] {
		t.Errorf("record 2 mismatch: %+v vs %+v", got[1], students[1])
	}
}

func TestDecode_BackfillsMissingColumns(t *testing.T) {
	// A dataset written by an older build that only knew four columns.
	legacy := "id,name,dob,class\n3,Priya,2011-09-12,Class 8\n"

	students, err := decodeDataset([]byte(legacy))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("expected 1 record, got %d", len(students))
	}

	s := students[0]
	if s.ID != 3 || s.Name != "Priya" || s.Class != "Class 8" {
		t.Errorf("known columns not mapped: %+v", s)
	}
	if s.City != "" || s.BloodGroup != "" {
		t.Errorf("missing columns must backfill empty, got city=%q blood=%q", s.City, s.BloodGroup)
	}

	// Re-encoding writes the full current schema.
	data, err := encodeDataset(students)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	header := strings.SplitN(string(data), "\n", 2)[0]
	if got := len(strings.Split(header, ",")); got != len(Columns()) {
		t.Errorf("expected %d header columns, got %d", len(Columns()), got)
	}
}

func TestDecode_IgnoresUnknownColumns(t *testing.T) {
	data := "id,name,favourite_colour\n1,Ravi,blue\n"

	students, err := decodeDataset([]byte(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if students[0].Name != "Ravi" {
		t.Errorf("expected name 'Ravi', got '%s'", students[0].Name)
	}
}

func TestDecode_InvalidID(t *testing.T) {
	data := "id,name\nnot-a-number,Ravi\n"

	if _, err := decodeDataset([]byte(data)); err == nil {
		t.Error("expected error for unparseable id")
	}
}

func TestDecode_Empty(t *testing.T) {
	students, err := decodeDataset(nil)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(students) != 0 {
		t.Errorf("expected empty dataset, got %d records", len(students))
	}
}

func TestColumns_IDFirst(t *testing.T) {
	cols := Columns()
	if len(cols) != 22 {
		t.Errorf("expected 22 columns, got %d", len(cols))
	}
	if cols[0] != "id" {
		t.Errorf("expected id first, got '%s'", cols[0])
	}
}

func TestFieldRef_CoversEveryColumn(t *testing.T) {
	var s Student
	for _, column := range Columns() {
		if _, ok := s.Field(column); !ok {
			t.Errorf("column %q declared in schema but not mapped to a field", column)
		}
	}
}
