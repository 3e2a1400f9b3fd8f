package api

const (
	ErrorMessage500 = "Something went wrong!"
)
