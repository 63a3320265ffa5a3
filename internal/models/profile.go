package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Profile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User           primitive.ObjectID `bson:"user" json:"user"`
	Company        string             `bson:"company,omitempty" json:"company,omitempty"`
	Website        string             `bson:"website,omitempty" json:"website,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Skills         []string           `bson:"skills" json:"skills"`
	Bio            string             `bson:"bio,omitempty" json:"bio,omitempty"`
	GithubUsername string             `bson:"githubusername,omitempty" json:"githubusername,omitempty"`
	Social         Social             `bson:"social,omitempty" json:"social"`
	Experience     []Experience       `bson:"experience" json:"experience"`
	Education      []Education        `bson:"education" json:"education"`
	Date           time.Time          `bson:"date" json:"date"`
}

type Social struct {
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
}

// Experience and Education entries are kept newest first.
type Experience struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Company     string             `bson:"company" json:"company"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time          `bson:"from" json:"from"`
	To          *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current     bool               `bson:"current" json:"current"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

type Education struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	School       string             `bson:"school" json:"school"`
	Degree       string             `bson:"degree" json:"degree"`
	FieldOfStudy string             `bson:"fieldofstudy" json:"fieldofstudy"`
	From         time.Time          `bson:"from" json:"from"`
	To           *time.Time         `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool               `bson:"current" json:"current"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
}

// Normalize drops To for a current position.
func (e *Experience) Normalize() {
	if e.Current {
		e.To = nil
	}
}

func (e *Education) Normalize() {
	if e.Current {
		e.To = nil
	}
}

// ProfileView is a profile with its owner's name and avatar resolved.
// The outer User shadows Profile.User in JSON.
type ProfileView struct {
	Profile
	User UserSummary `json:"user"`
}

func NewProfileView(p Profile, u UserSummary) ProfileView {
	return ProfileView{Profile: p, User: u}
}

// ProfileFields is a partial profile update; nil fields are left untouched.
type ProfileFields struct {
	Company        *string
	Website        *string
	Location       *string
	Status         *string
	Skills         []string
	Bio            *string
	GithubUsername *string
	YouTube        *string
	Twitter        *string
	Facebook       *string
	LinkedIn       *string
	Instagram      *string
}

// Set returns the $set document for the present fields, social links as dotted paths.
func (f ProfileFields) Set() map[string]any {
	set := map[string]any{}
	put := func(key string, v *string) {
		if v != nil && *v != "" {
			set[key] = *v
		}
	}
	put("company", f.Company)
	put("website", f.Website)
	put("location", f.Location)
	put("status", f.Status)
	put("bio", f.Bio)
	put("githubusername", f.GithubUsername)
	put("social.youtube", f.YouTube)
	put("social.twitter", f.Twitter)
	put("social.facebook", f.Facebook)
	put("social.linkedin", f.LinkedIn)
	put("social.instagram", f.Instagram)
	if len(f.Skills) > 0 {
		set["skills"] = f.Skills
	}
	return set
}
