package main

import "github.com/campusorient/discovery-sync/internal/domain/model"

func demoUser() model.User {
	return model.User{
		Username:  "demo",
		Email:     "demo@example.com",
		FirstName: "Demo",
		LastName:  "Étudiant",
		Role:      model.RoleUser,
		Profile: &model.Profile{
			EducationLevel: "licence",
			Interests:      []string{"informatique", "sciences"},
		},
	}
}
