package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type JobCard struct {
	ID                 string
	BillNumber         sql.NullString
	AdmittedDate       time.Time
	DischargedDate     sql.NullTime
	Delivered          bool
	OnHold             bool
	BrandName          string
	ModelName          string
	RegistrationNumber string
	Mileage            sql.NullString
	CustomerName       sql.NullString
	CustomerContact    sql.NullString
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type JobCardConcern struct {
	ID          string
	JobCardID   string
	Position    int
	ConcernText string
	Status      string
}

type JobCardSpare struct {
	ID            string
	JobCardID     string
	Position      int
	SparePartName sql.NullString
	Status        string
	Quantity      decimal.NullDecimal
	UnitPrice     decimal.NullDecimal
	TotalPrice    decimal.NullDecimal
	OrderedDate   sql.NullTime
	ReceivedDate  sql.NullTime
}

type JobCardLabour struct {
	ID             string
	JobCardID      string
	Position       int
	JobDescription string
	Amount         decimal.NullDecimal
}

type CarBrand struct {
	ID        string
	Name      string
	LogoPath  sql.NullString
	CreatedAt time.Time
}

type CarModel struct {
	ID         string
	BrandID    string
	BrandName  string
	Name       string
	SamplePath sql.NullString
	CreatedAt  time.Time
}

type SparePart struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type ConcernSolution struct {
	ID        string
	Concern   string
	Solution  string
	CreatedAt time.Time
}
