package dto

// CreateBlockRequest adds a block to the active school year.
type CreateBlockRequest struct {
	Number int    `json:"number" validate:"required,gt=0"`
	Name   string `json:"name" validate:"required"`
}

// UpdateBlockRequest patches a block; nil fields are left unchanged.
type UpdateBlockRequest struct {
	Number   *int    `json:"number" validate:"omitempty,gt=0"`
	Name     *string `json:"name" validate:"omitempty,min=1"`
	Archived *bool   `json:"archived"`
}

// StudentFlags carries the six category flags.
type StudentFlags struct {
	ML     bool `json:"ml"`
	MLNew  bool `json:"mlNew"`
	IEP504 bool `json:"iep504"`
	EC     bool `json:"ec"`
	CA     bool `json:"ca"`
	HIIT   bool `json:"hiit"`
}

// CreateStudentRequest adds a student; the seat number is assigned by the server.
type CreateStudentRequest struct {
	DisplayName string  `json:"displayName" validate:"required"`
	BlockID     string  `json:"blockId" validate:"required"`
	EOG         string  `json:"eog"`
	Notes       *string `json:"notes"`
	StudentFlags
}

// UpdateStudentRequest patches a student; nil fields are left unchanged. EOG "" clears the level.
type UpdateStudentRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=1"`
	Active      *bool   `json:"active"`
	BlockID     *string `json:"blockId" validate:"omitempty,min=1"`
	ML          *bool   `json:"ml"`
	MLNew       *bool   `json:"mlNew"`
	IEP504      *bool   `json:"iep504"`
	EC          *bool   `json:"ec"`
	CA          *bool   `json:"ca"`
	HIIT        *bool   `json:"hiit"`
	EOG         *string `json:"eog"`
	Notes       *string `json:"notes"`
}

// CreateDeskRequest places a desk. Missing geometry uses the default desk size and position.
type CreateDeskRequest struct {
	BlockID   string   `json:"blockId" validate:"required"`
	Type      string   `json:"type"`
	StudentID string   `json:"studentId"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Width     *float64 `json:"width" validate:"omitempty,gt=0"`
	Height    *float64 `json:"height" validate:"omitempty,gt=0"`
	Rotation  *float64 `json:"rotation"`
	GroupID   *string  `json:"groupId"`
}

// UpdateDeskRequest patches desk geometry or assignment. An empty StudentID unassigns the desk.
type UpdateDeskRequest struct {
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Width     *float64 `json:"width" validate:"omitempty,gt=0"`
	Height    *float64 `json:"height" validate:"omitempty,gt=0"`
	Rotation  *float64 `json:"rotation"`
	GroupID   *string  `json:"groupId"`
	StudentID *string  `json:"studentId"`
}

// MoveDeskRequest reports where a dragged desk was released.
type MoveDeskRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
