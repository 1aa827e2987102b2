package models

// Doctor is an account that belongs to one hospital and receives bookings.
type Doctor struct {
	BaseAccount         `bson:",inline"`
	HospitalID          string   `gorm:"size:36;index;not null" json:"hospitalId" bson:"hospitalId"`
	Specialization      string   `gorm:"size:100;index" json:"specialization" bson:"specialization"`
	Qualification       string   `gorm:"size:255" json:"qualification" bson:"qualification"`
	LicenseNumber       string   `gorm:"size:100" json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	Experience          int      `json:"experience" bson:"experience"`
	HospitalAffiliation string   `gorm:"size:255" json:"hospitalAffiliation,omitempty" bson:"hospitalAffiliation,omitempty"`
	ConsultationFee     float64  `json:"consultationFee" bson:"consultationFee"`
	AvailableHours      string   `gorm:"size:255" json:"availableHours,omitempty" bson:"availableHours,omitempty"`
	Department          string   `gorm:"size:100;not null" json:"department" bson:"department"`
	IsAvailable         bool     `gorm:"default:true" json:"isAvailable" bson:"isAvailable"`
	Rating              *float64 `json:"rating" bson:"rating"`
	TotalReviews        int      `json:"totalReviews" bson:"totalReviews"`
}

func (Doctor) TableName() string { return "doctors" }

type DoctorView struct {
	BaseView
	HospitalID          string   `json:"hospitalId"`
	Specialization      string   `json:"specialization"`
	Qualification       string   `json:"qualification"`
	LicenseNumber       string   `json:"licenseNumber,omitempty"`
	Experience          int      `json:"experience"`
	HospitalAffiliation string   `json:"hospitalAffiliation,omitempty"`
	ConsultationFee     float64  `json:"consultationFee"`
	AvailableHours      string   `json:"availableHours,omitempty"`
	Department          string   `json:"department"`
	IsAvailable         bool     `json:"isAvailable"`
	Rating              *float64 `json:"rating"`
	TotalReviews        int      `json:"totalReviews"`
}

func (d *Doctor) account() {}

func (d *Doctor) RoleView() any {
	return DoctorView{
		BaseView:            d.BaseView(),
		HospitalID:          d.HospitalID,
		Specialization:      d.Specialization,
		Qualification:       d.Qualification,
		LicenseNumber:       d.LicenseNumber,
		Experience:          d.Experience,
		HospitalAffiliation: d.HospitalAffiliation,
		ConsultationFee:     d.ConsultationFee,
		AvailableHours:      d.AvailableHours,
		Department:          d.Department,
		IsAvailable:         d.IsAvailable,
		Rating:              d.Rating,
		TotalReviews:        d.TotalReviews,
	}
}
