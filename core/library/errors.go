package library

import "errors"

// 业务层错误，由 server 映射为 HTTP 状态码
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidGenre    = errors.New("genre is not recognised by the catalog")
)
