package service

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"hackathon/internal/errors"
	"hackathon/internal/model"
)

// ValidationFailedMessage is the top level message of a shape validation error.
const ValidationFailedMessage = "Validation failed"

var (
	teamNamePattern   = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
	personNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	phonePattern      = regexp.MustCompile(`^[\d\s\-+()]{10,15}$`)
	usnPattern        = regexp.MustCompile(`^[A-Z0-9]+$`)
)

const passwordSpecials = "@$!%*?&"

// fieldMessages maps a field name and failing tag to the message shown to clients.
// The "*" entry is used for tags without their own message.
var fieldMessages = map[string]map[string]string{
	"teamName": {
		"*":        "Team name must be between 2 and 100 characters",
		"teamname": "Team name can only contain letters, numbers, spaces, hyphens, and underscores",
	},
	"members": {
		"*": "Team must have between 1 and 4 members",
	},
	"projectIdea": {
		"*": "Project idea cannot exceed 1000 characters",
	},
	"name": {
		"*":          "Name must be between 2 and 100 characters",
		"personname": "Name can only contain letters and spaces",
	},
	"email": {
		"*": "Please provide a valid email address",
	},
	"phone": {
		"*": "Please provide a valid phone number",
	},
	"branch": {
		"*": "Please select a valid branch",
	},
	"usn": {
		"*":   "USN must be between 5 and 20 characters",
		"usn": "USN can only contain uppercase letters and numbers",
	},
	"semester": {
		"*": "Please select a valid semester",
	},
	"college": {
		"*": "College name must be between 2 and 200 characters",
	},
	"password": {
		"*":              "Password must be at least 8 characters long",
		"required":       "Password is required",
		"strongpassword": "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character",
	},
	"page": {
		"*": "Page must be a positive integer",
	},
	"limit": {
		"*": "Limit must be between 1 and 100",
	},
	"search": {
		"*": "Search term cannot exceed 100 characters",
	},
	"status": {
		"*": "Invalid status value",
	},
	"sortBy": {
		"*": "Invalid sort field",
	},
	"sortOrder": {
		"*": "Sort order must be asc or desc",
	},
}

// Validator checks request and team payloads against the field rules.
// It is shared by the HTTP layer and the registration workflow.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator with the custom field rules registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	rules := map[string]validator.Func{
		"teamname":       matches(teamNamePattern),
		"personname":     matches(personNamePattern),
		"phone":          matches(phonePattern),
		"usn":            matches(usnPattern),
		"branch":         oneOf(model.Branches),
		"semester":       oneOf(model.Semesters),
		"strongpassword": strongPassword,
	}
	for tag, fn := range rules {
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, fn)
	}
	return &Validator{validate: v}
}

// fieldName reports fields by their JSON or query parameter name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "query", "param"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func oneOf(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

func strongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// Struct validates s and returns a Validation AppError listing every offending field.
func (v *Validator) Struct(s interface{}) error {
	fields := v.fieldErrors(s)
	if len(fields) == 0 {
		return nil
	}
	return errors.Validation(ValidationFailedMessage, fields...)
}

// fieldErrors collects field errors for s.
func (v *Validator) fieldErrors(s interface{}) []errors.FieldError {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return []errors.FieldError{{Message: err.Error()}}
	}
	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: messageFor(fe.Field(), fe.Tag()),
			Value:   fe.Value(),
		})
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func messageFor(field, tag string) string {
	// dive errors are reported on "members[0]" style names
	if i := strings.IndexByte(field, '['); i > 0 {
		field = field[:i]
	}
	if msgs, ok := fieldMessages[field]; ok {
		if msg, ok := msgs[tag]; ok {
			return msg
		}
		return msgs["*"]
	}
	if tag == "required" {
		return fmt.Sprintf("%s is required", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

// ValidateMemberShape checks one member against the member field rules.
// index positions the member in the submitted list for error paths.
func (v *Validator) ValidateMemberShape(member MemberInput, index int) []errors.FieldError {
	fields := v.fieldErrors(member)
	for i := range fields {
		fields[i].Field = fmt.Sprintf("members[%d].%s", index, fields[i].Field)
	}
	return fields
}

// ValidateTeamShape checks the team name, member count, project idea and every member.
func (v *Validator) ValidateTeamShape(team TeamInput) error {
	fields := v.fieldErrors(team)
	for i, member := range team.Members {
		fields = append(fields, v.ValidateMemberShape(member, i)...)
	}
	if len(fields) == 0 {
		return nil
	}
	return errors.Validation(ValidationFailedMessage, fields...)
}
