package company

import "time"

type Company struct {
	ID        int64
	Name      string
	LogoPath  *string
	OwnerID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
