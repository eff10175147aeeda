package chat

import "errors"

// Engine failures surfaced through acks. The messages are forwarded to
// clients verbatim, hence the casing and the language.
var (
	ErrRoomExists   = errors.New("La sala ya existe")
	ErrRoomNotFound = errors.New("La sala no existe")
	ErrBadPassword  = errors.New("Contraseña incorrecta")
	ErrNameTaken    = errors.New("El nombre de usuario ya está en uso")
)
