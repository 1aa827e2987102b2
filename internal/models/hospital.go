package models

import "gorm.io/datatypes"

// Hospital is an account representing a facility that employs doctors.
type Hospital struct {
	BaseAccount          `bson:",inline"`
	HospitalName         string            `gorm:"size:255;not null" json:"hospitalName" bson:"hospitalName"`
	RegistrationNumber   string            `gorm:"size:100;not null" json:"registrationNumber" bson:"registrationNumber"`
	LicenseNumber        string            `gorm:"size:100" json:"licenseNumber,omitempty" bson:"licenseNumber,omitempty"`
	Description          string            `gorm:"type:text" json:"description,omitempty" bson:"description,omitempty"`
	Facilities           []string          `gorm:"serializer:json" json:"facilities" bson:"facilities"`
	Departments          []string          `gorm:"serializer:json" json:"departments" bson:"departments"`
	OperatingHours       datatypes.JSONMap `json:"operatingHours,omitempty" bson:"operatingHours,omitempty"`
	Logo                 string            `gorm:"size:512" json:"logo,omitempty" bson:"logo,omitempty"`
	CoverPhoto           string            `gorm:"size:512" json:"coverPhoto,omitempty" bson:"coverPhoto,omitempty"`
	EmergencyPhoneNumber string            `gorm:"size:20" json:"emergencyPhoneNumber,omitempty" bson:"emergencyPhoneNumber,omitempty"`
	Website              string            `gorm:"size:255" json:"website,omitempty" bson:"website,omitempty"`
	City                 string            `gorm:"size:100;index" json:"city,omitempty" bson:"city,omitempty"`
	State                string            `gorm:"size:100;index" json:"state,omitempty" bson:"state,omitempty"`
	ZipCode              string            `gorm:"size:20" json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	BedCount             int               `json:"bedCount" bson:"bedCount"`
	ICUBedCount          int               `gorm:"column:icu_bed_count" json:"icuBedCount" bson:"icuBedCount"`
	EmergencyBedCount    int               `json:"emergencyBedCount" bson:"emergencyBedCount"`
	IsOpen               bool              `gorm:"default:true" json:"isOpen" bson:"isOpen"`
	HasEmergency         bool              `json:"hasEmergency" bson:"hasEmergency"`
	Is24x7               bool              `gorm:"column:is24x7" json:"is24x7" bson:"is24x7"`
	Type                 string            `gorm:"size:50;index" json:"type,omitempty" bson:"type,omitempty"`
	Rating               *float64          `json:"rating" bson:"rating"`
	TotalReviews         int               `json:"totalReviews" bson:"totalReviews"`
	Accreditations       []string          `gorm:"serializer:json" json:"accreditations" bson:"accreditations"`
	Images               []string          `gorm:"serializer:json" json:"images" bson:"images"`
}

func (Hospital) TableName() string { return "hospitals" }

type HospitalView struct {
	BaseView
	DisplayName          string            `json:"displayName"`
	HospitalName         string            `json:"hospitalName"`
	RegistrationNumber   string            `json:"registrationNumber"`
	LicenseNumber        string            `json:"licenseNumber,omitempty"`
	Description          string            `json:"description,omitempty"`
	Facilities           []string          `json:"facilities"`
	Departments          []string          `json:"departments"`
	OperatingHours       datatypes.JSONMap `json:"operatingHours,omitempty"`
	Logo                 string            `json:"logo,omitempty"`
	CoverPhoto           string            `json:"coverPhoto,omitempty"`
	EmergencyPhoneNumber string            `json:"emergencyPhoneNumber,omitempty"`
	Website              string            `json:"website,omitempty"`
	City                 string            `json:"city,omitempty"`
	State                string            `json:"state,omitempty"`
	ZipCode              string            `json:"zipCode,omitempty"`
	BedCount             int               `json:"bedCount"`
	ICUBedCount          int               `json:"icuBedCount"`
	EmergencyBedCount    int               `json:"emergencyBedCount"`
	IsOpen               bool              `json:"isOpen"`
	HasEmergency         bool              `json:"hasEmergency"`
	Is24x7               bool              `json:"is24x7"`
	Type                 string            `json:"type,omitempty"`
	Rating               *float64          `json:"rating"`
	TotalReviews         int               `json:"totalReviews"`
	Accreditations       []string          `json:"accreditations"`
	Images               []string          `json:"images"`
}

func (h *Hospital) account() {}

// DisplayName is the hospital name, falling back to the account name.
func (h *Hospital) DisplayName() string {
	if h.HospitalName != "" {
		return h.HospitalName
	}
	return h.Name
}

func (h *Hospital) RoleView() any {
	return HospitalView{
		BaseView:             h.BaseView(),
		DisplayName:          h.DisplayName(),
		HospitalName:         h.HospitalName,
		RegistrationNumber:   h.RegistrationNumber,
		LicenseNumber:        h.LicenseNumber,
		Description:          h.Description,
		Facilities:           h.Facilities,
		Departments:          h.Departments,
		OperatingHours:       h.OperatingHours,
		Logo:                 h.Logo,
		CoverPhoto:           h.CoverPhoto,
		EmergencyPhoneNumber: h.EmergencyPhoneNumber,
		Website:              h.Website,
		City:                 h.City,
		State:                h.State,
		ZipCode:              h.ZipCode,
		BedCount:             h.BedCount,
		ICUBedCount:          h.ICUBedCount,
		EmergencyBedCount:    h.EmergencyBedCount,
		IsOpen:               h.IsOpen,
		HasEmergency:         h.HasEmergency,
		Is24x7:               h.Is24x7,
		Type:                 h.Type,
		Rating:               h.Rating,
		TotalReviews:         h.TotalReviews,
		Accreditations:       h.Accreditations,
		Images:               h.Images,
	}
}
