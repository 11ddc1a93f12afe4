package models

type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CustomerAccount holds login credentials for a customer. PasswordHash is a
// bcrypt hash and is never serialized.
type CustomerAccount struct {
	ID           int64             `json:"id"`
	Username     string            `json:"username"`
	PasswordHash string            `json:"-"`
	CustomerID   int64             `json:"customer_id"`
	Customer     *CustomerSnapshot `json:"customer,omitempty"`
}

// CustomerSnapshot is the nested customer view embedded in account responses.
type CustomerSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (c *Customer) Snapshot() *CustomerSnapshot {
	return &CustomerSnapshot{Name: c.Name, Email: c.Email, Phone: c.Phone}
}
