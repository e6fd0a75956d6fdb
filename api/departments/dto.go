package departments

type CreateDepartmentBody struct {
	Name string `json:"name" validate:"required,min=2"`
}
