package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile roles. Enforcement happens at the route/service layer; the database
// stores the role string as-is.
const (
	RoleAdmin     = "admin"
	RoleSecretary = "secretary"
	RoleEducator  = "educator"
	RoleParent    = "parent"
)

// IsStaff reports whether the role may manage records and validate reports.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleSecretary
}

// Child statuses.
const (
	ChildActive      = "active"
	ChildInactive    = "inactive"
	ChildWaitingList = "waiting_list"
)

// Report statuses.
const (
	StatusDraft     = "draft"
	StatusPending   = "pending"
	StatusValidated = "validated"
	StatusRejected  = "rejected"
)

// Attendance scan types.
const (
	ScanArrival   = "arrival"
	ScanDeparture = "departure"
)

type Profile struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// UserID is the external auth identity this profile is linked 1:1 to.
	UserID string `gorm:"uniqueIndex;size:64;not null" json:"user_id"`
	Role   string `gorm:"size:16;not null" json:"role"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Child struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	BirthDate     time.Time `json:"birth_date"`
	AdmissionDate time.Time `json:"admission_date"`

	Section string `gorm:"size:16;index" json:"section"`
	// GroupID is empty while the child is unassigned.
	GroupID string `gorm:"size:36;index" json:"group_id"`
	Status  string `gorm:"size:16;default:active;index" json:"status"`

	Allergies     string         `gorm:"type:text" json:"allergies"`
	MedicalNotes  string         `gorm:"type:text" json:"medical_notes"`
	BehaviorNotes string         `gorm:"type:text" json:"behavior_notes"`
	MedicalInfo   datatypes.JSON `json:"medical_info"`

	// CodeQRID is the short printable code on the child's badge. Uniqueness is
	// enforced by the generator, not the schema: its exhaustion fallback may
	// deliberately store a colliding code.
	CodeQRID string `gorm:"index;size:8" json:"code_qr_id"`
	PhotoURL string `json:"photo_url"`
}

func (c *Child) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Group struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name     string `gorm:"not null" json:"name"`
	Section  string `gorm:"size:16;index" json:"section"`
	Capacity int    `json:"capacity"`

	AssignedEducatorID string `gorm:"size:36;index" json:"assigned_educator_id"`

	MinAgeMonths int `json:"min_age_months"`
	MaxAgeMonths int `json:"max_age_months"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

// ReviewState is the lifecycle block shared by daily and weekly reports.
// Status: draft ⇄ pending → validated | rejected; rejected flows back through
// draft/pending on resubmit. IsValidated is the gate for parent visibility.
type ReviewState struct {
	Status          string     `gorm:"size:16;default:draft;index" json:"status"`
	IsValidated     bool       `gorm:"index" json:"is_validated"`
	SubmittedAt     *time.Time `json:"submitted_at"`
	ValidatedBy     string     `gorm:"size:36" json:"validated_by"`
	ValidatedAt     *time.Time `json:"validated_at"`
	ValidationNote  string     `gorm:"type:text" json:"validation_note"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason"`
}

type DailyReport struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChildID string `gorm:"size:36;not null;uniqueIndex:idx_daily_child_date" json:"child_id"`
	// Date is the report day, YYYY-MM-DD. One report per child per day.
	Date     string `gorm:"size:10;not null;uniqueIndex:idx_daily_child_date" json:"date"`
	AuthorID string `gorm:"size:36" json:"author_id"`

	HealthStatus string         `gorm:"size:32" json:"health_status"`
	Activities   datatypes.JSON `json:"activities"`
	NapSlept     bool           `json:"nap_slept"`
	NapMinutes   int            `json:"nap_minutes"`
	// Meals maps a slot to how much was eaten: bien | peu | rien.
	Meals datatypes.JSON `json:"meals"`

	DiaperChanges int  `json:"diaper_changes"`
	HygieneOK     bool `json:"hygiene_ok"`

	Mood         datatypes.JSON `json:"mood"`
	Observations string         `gorm:"type:text" json:"observations"`
	MediaURLs    datatypes.JSON `json:"media_urls"`

	Review ReviewState `gorm:"embedded" json:"review"`
}

func (r *DailyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// WeeklyReport is the bi-monthly progress report. One per child per period,
// keyed by the period's first day.
type WeeklyReport struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChildID     string `gorm:"size:36;not null;uniqueIndex:idx_weekly_child_period" json:"child_id"`
	PeriodStart string `gorm:"size:10;not null;uniqueIndex:idx_weekly_child_period" json:"period_start"`
	PeriodEnd   string `gorm:"size:10" json:"period_end"`
	AuthorID    string `gorm:"size:36" json:"author_id"`

	// Progress maps a development domain (langage, motricité, ...) to free text.
	Progress   datatypes.JSON `json:"progress"`
	Highlights string         `gorm:"type:text" json:"highlights"`
	Goals      string         `gorm:"type:text" json:"goals"`
	Mood       datatypes.JSON `json:"mood"`
	MediaURLs  datatypes.JSON `json:"media_urls"`

	Review ReviewState `gorm:"embedded" json:"review"`
}

func (r *WeeklyReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type DailyAttendance struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChildID string `gorm:"size:36;not null;uniqueIndex:idx_att_child_date" json:"child_id"`
	Date    string `gorm:"size:10;not null;uniqueIndex:idx_att_child_date" json:"date"`

	ArrivalTime        *time.Time `json:"arrival_time"`
	ArrivalScannedBy   string     `gorm:"size:36" json:"arrival_scanned_by"`
	DepartureTime      *time.Time `json:"departure_time"`
	DepartureScannedBy string     `gorm:"size:36" json:"departure_scanned_by"`

	IsPresent       bool   `json:"is_present"`
	AbsenceReason   string `json:"absence_reason"`
	AbsenceNotified bool   `json:"absence_notified"`
}

// TableName keeps the name the hosted schema used (singular).
func (DailyAttendance) TableName() string { return "daily_attendance" }

func (a *DailyAttendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// QRScanLog is the append-only audit trail of badge scans. Rows are never
// updated or deleted.
type QRScanLog struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time

	ChildID   string    `gorm:"size:36;index" json:"child_id"`
	ActorID   string    `gorm:"size:36" json:"actor_id"`
	ScanType  string    `gorm:"size:16" json:"scan_type"`
	ScannedAt time.Time `json:"scanned_at"`
}

func (l *QRScanLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type ParentChildRelation struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ParentID string `gorm:"size:36;not null;uniqueIndex:idx_parent_child" json:"parent_id"`
	ChildID  string `gorm:"size:36;not null;uniqueIndex:idx_parent_child" json:"child_id"`

	Relationship     string `gorm:"size:32" json:"relationship"`
	IsPrimaryContact bool   `json:"is_primary_contact"`
}

func (ParentChildRelation) TableName() string { return "parent_children" }

func (r *ParentChildRelation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

type Message struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	SenderID    string `gorm:"size:36;index" json:"sender_id"`
	RecipientID string `gorm:"size:36;index" json:"recipient_id"`
	ChildID     string `gorm:"size:36" json:"child_id"`

	Subject string `json:"subject"`
	Body    string `gorm:"type:text" json:"body"`
	IsRead  bool   `json:"is_read"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// AuthorizedPerson is someone other than a parent allowed to pick the child up.
type AuthorizedPerson struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChildID      string `gorm:"size:36;not null;index" json:"child_id"`
	Name         string `gorm:"not null" json:"name"`
	Relationship string `gorm:"size:32" json:"relationship"`
	Phone        string `json:"phone"`
	IDDocument   string `json:"id_document"`
}

func (AuthorizedPerson) TableName() string { return "authorized_persons" }

func (p *AuthorizedPerson) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type MedicalRecord struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time

	ChildID      string `gorm:"size:36;not null;index" json:"child_id"`
	RecordType   string `gorm:"size:32" json:"record_type"`
	Date         string `gorm:"size:10" json:"date"`
	Practitioner string `json:"practitioner"`
	Notes        string `gorm:"type:text" json:"notes"`
	DocumentURL  string `json:"document_url"`
}

func (m *MedicalRecord) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
