package service

import (
	"fmt"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrStreamNotFound(name string) *ErrResourceNotFound {
	return NewErrResourceNotFound(name, "replication stream")
}

func NewErrEntityNotFound(name string) *ErrResourceNotFound {
	return NewErrResourceNotFound(name, "orphan entity")
}

func NewErrLocationNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "location")
}

func NewErrUserNotFound(id string) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "user")
}

type ErrInvalidRequest struct {
	error
}

func NewErrInvalidRequest(message string) *ErrInvalidRequest {
	return &ErrInvalidRequest{fmt.Errorf("bad request: %s", message)}
}
