package domain

import "time"

type MemberStatus string

const (
	MemberStatusPending   MemberStatus = "PENDING"
	MemberStatusApproved  MemberStatus = "APPROVED"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
)

type User struct {
	ID          int32        `json:"id"`
	Email       string       `json:"email"`
	PhoneNumber string       `json:"phone_number"`
	Name        string       `json:"name"`
	Status      MemberStatus `json:"status"`
	IsAdmin     bool         `json:"is_admin"`
	CreatedOn   time.Time    `json:"created_on"`
	UpdatedOn   time.Time    `json:"updated_on"`
}
