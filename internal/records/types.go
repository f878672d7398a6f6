package records

import "strconv"

// Student is one identity record. All attributes except ID are free-form
// optional strings; ID is assigned by the store and never changes.
type Student struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	DOB               string `json:"dob"`
	Gender            string `json:"gender"`
	Class             string `json:"class"`
	BloodGroup        string `json:"blood_group"`
	SpecialTalent     string `json:"special_talent"`
	Address           string `json:"address"`
	Area              string `json:"area"`
	City              string `json:"city"`
	Pincode           string `json:"pincode"`
	ParentName        string `json:"parent_name"`
	ParentRelation    string `json:"parent_relation"`
	ParentContact     string `json:"parent_contact"`
	ParentOccupation  string `json:"parent_occupation"`
	ParentEmail       string `json:"parent_email"`
	EmergencyContact  string `json:"emergency_contact"`
	PreviousSchool    string `json:"previous_school"`
	Achievements      string `json:"achievements"`
	AdmissionDate     string `json:"admission_date"`
	MedicalConditions string `json:"medical_conditions"`
	AdditionalNotes   string `json:"additional_notes"`
}

// fieldRef returns a pointer to the struct field backing a column, or nil
// for "id" and unknown columns. Keeping this as an explicit switch means a
// schema change that forgets a field fails loudly in tests instead of
// silently dropping data.
func (s *Student) fieldRef(column string) *string {
	switch column {
	case "name":
		return &s.Name
	case "dob":
		return &s.DOB
	case "gender":
		return &s.Gender
	case "class":
		return &s.Class
	case "blood_group":
		return &s.BloodGroup
	case "special_talent":
		return &s.SpecialTalent
	case "address":
		return &s.Address
	case "area":
		return &s.Area
	case "city":
		return &s.City
	case "pincode":
		return &s.Pincode
	case "parent_name":
		return &s.ParentName
	case "parent_relation":
		return &s.ParentRelation
	case "parent_contact":
		return &s.ParentContact
	case "parent_occupation":
		return &s.ParentOccupation
	case "parent_email":
		return &s.ParentEmail
	case "emergency_contact":
		return &s.EmergencyContact
	case "previous_school":
		return &s.PreviousSchool
	case "achievements":
		return &s.Achievements
	case "admission_date":
		return &s.AdmissionDate
	case "medical_conditions":
		return &s.MedicalConditions
	case "additional_notes":
		return &s.AdditionalNotes
	default:
		return nil
	}
}

// Field returns the value of a column by name. The id column is rendered as
// its decimal representation. Unknown columns yield ok=false.
func (s *Student) Field(column string) (string, bool) {
	if column == "id" {
		return strconv.Itoa(s.ID), true
	}
	if ref := s.fieldRef(column); ref != nil {
		return *ref, true
	}
	return "", false
}

// Apply copies the supplied attributes into the record. The id column is
// immutable and ignored if present; unknown columns are ignored as well.
func (s *Student) Apply(attrs map[string]string) {
	for column, value := range attrs {
		if ref := s.fieldRef(column); ref != nil {
			*ref = value
		}
	}
}

// newStudent builds a record with the given id and attributes. Unspecified
// attributes stay empty strings.
func newStudent(id int, attrs map[string]string) Student {
	s := Student{ID: id}
	s.Apply(attrs)
	return s
}
