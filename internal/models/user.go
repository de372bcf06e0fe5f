// models содержит доменные сущности profiles-service.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import "time"

// UserGroupName — имя группы пользователя.
type UserGroupName string

const (
	UserGroupUser      UserGroupName = "user"
	UserGroupModerator UserGroupName = "moderator"
	UserGroupAdmin     UserGroupName = "admin"
)

// UserGroup — группа (роль) пользователя.
type UserGroup struct {
	ID   int32
	Name UserGroupName
}

// User — учётная запись. Group загружается вместе с пользователем.
type User struct {
	ID        int64
	Email     string
	IsActive  bool
	GroupID   int32
	Group     *UserGroup
	CreatedAt time.Time
	UpdatedAt time.Time
}

// InGroup сообщает, состоит ли пользователь в группе name.
func (u *User) InGroup(name UserGroupName) bool {
	return u != nil && u.Group != nil && u.Group.Name == name
}
