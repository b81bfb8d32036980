package models

import "time"

// Bus is a physical vehicle assigned to a route. Code is the token printed
// on the onboard QR sticker that commuters scan.
type Bus struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Registration string    `json:"registration"`
	RouteID      int64     `json:"route_id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
