package employee

import "time"

type Employee struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId,omitempty"`
	Code       string     `json:"code"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone,omitempty"`
	Department string     `json:"department,omitempty"`
	Position   string     `json:"position,omitempty"`
	Birthday   *time.Time `json:"birthday,omitempty"`
	JoinDate   time.Time  `json:"joinDate"`
	LeaveDate  *time.Time `json:"leaveDate,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// DefaultGrants is the bucket allocation seeded for every new employee, in
// days per leave year.
type DefaultGrants struct {
	Casual      int
	Sick        int
	Earned      int
	Maternity   int
	Paternity   int
	Bereavement int
}

var StandardGrants = DefaultGrants{
	Casual:      12,
	Sick:        8,
	Earned:      20,
	Maternity:   90,
	Paternity:   7,
	Bereavement: 7,
}
