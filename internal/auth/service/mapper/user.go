package mapper

import (
	authdomain "github.com/AlibekovAA/credauth/internal/auth/domain"
	authdto "github.com/AlibekovAA/credauth/internal/auth/service/dto"
	userdomain "github.com/AlibekovAA/credauth/internal/user/domain"
)

func ToIdentity(user userdomain.User) authdomain.Identity {
	return authdomain.Identity{
		ID:    string(user.ID),
		Name:  user.Name(),
		Email: user.Email,
	}
}

func ToRegisteredUser(user userdomain.User) authdto.RegisteredUser {
	return authdto.RegisteredUser{
		ID:       string(user.ID),
		Email:    user.Email,
		Username: user.Username,
	}
}
