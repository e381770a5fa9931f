package service

import (
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/repository"
	"book_platform_backend/internal/util"
	"fmt"

	"gorm.io/gorm"
)

type RBACService struct {
	UserRepo *repository.UserRepository
	RoleRepo *repository.RoleRepository
}

func NewRBACService(userRepo *repository.UserRepository, roleRepo *repository.RoleRepository) *RBACService {
	return &RBACService{
		UserRepo: userRepo,
		RoleRepo: roleRepo,
	}
}

type seededPermission struct {
	name     string
	resource string
	action   string
}

var defaultRoles = map[string]string{
	model.RoleAdmin:      "Administrator with full system access",
	model.RoleInstructor: "Instructor with content management access",
	model.RoleStudent:    "Student with limited access",
}

var defaultPermissions = map[string][]seededPermission{
	model.RoleAdmin: {
		{"admin_panel_access", util.ResourceAdminPanel, util.ActionRead},
		{"manage_users", util.ResourceUser, util.ActionWrite},
		{"manage_content", util.ResourceContent, util.ActionWrite},
		{"view_analytics", util.ResourceAnalytics, util.ActionRead},
	},
	model.RoleInstructor: {
		{"create_content", util.ResourceContent, util.ActionWrite},
		{"edit_content", util.ResourceContent, util.ActionUpdate},
		{"view_student_progress", util.ResourceStudentProgress, util.ActionRead},
	},
	model.RoleStudent: {
		{"view_content", util.ResourceContent, util.ActionRead},
		{"submit_exercises", util.ResourceExercise, util.ActionWrite},
		{"view_own_progress", util.ResourceOwnProgress, util.ActionRead},
	},
}

// Bootstrap seeds the default roles and permission sets. It looks every row
// up by its natural key before inserting, so running it on each startup
// never duplicates anything.
func (s *RBACService) Bootstrap() error {
	for roleName, perms := range defaultPermissions {
		for _, p := range perms {
			if !util.KnownResources[p.resource] {
				return fmt.Errorf("rbac bootstrap: unknown resource %q in role %q", p.resource, roleName)
			}
			if !util.KnownActions[p.action] {
				return fmt.Errorf("rbac bootstrap: unknown action %q in role %q", p.action, roleName)
			}
		}
	}

	for roleName, description := range defaultRoles {
		role, err := s.RoleRepo.FindByName(roleName)
		if err == gorm.ErrRecordNotFound {
			role = &model.Role{Name: roleName, Description: description}
			if err := s.RoleRepo.Create(role); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, p := range defaultPermissions[roleName] {
			_, err := s.RoleRepo.FindPermission(role.ID, p.name, p.resource, p.action)
			if err == gorm.ErrRecordNotFound {
				perm := &model.Permission{
					Name:     p.name,
					Resource: p.resource,
					Action:   p.action,
					RoleID:   role.ID,
				}
				if err := s.RoleRepo.CreatePermission(perm); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}
	}

	return nil
}

// HasPermission is a pure predicate over the identity snapshot. Anonymous
// callers hold nothing; the admin role holds everything; otherwise an exact
// (resource, action) match over the user's roles decides. Roles and their
// permissions must be preloaded on the user.
func (s *RBACService) HasPermission(user *model.User, resource, action string) bool {
	if user == nil {
		return false
	}

	if user.HasRole(model.RoleAdmin) {
		return true
	}

	for _, role := range user.Roles {
		for _, perm := range role.Permissions {
			if perm.Resource == resource && perm.Action == action {
				return true
			}
		}
	}

	return false
}

// AssignRole adds roleName to the user's role set. Returns false with no
// error when the user already holds the role.
func (s *RBACService) AssignRole(userID uint, roleName string) (bool, error) {
	role, err := s.RoleRepo.FindByName(roleName)
	if err == gorm.ErrRecordNotFound {
		return false, util.ErrRoleNotFound
	}
	if err != nil {
		return false, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return false, util.ErrUserNotFound
	}

	has, err := s.RoleRepo.UserHasRole(user.ID, role.ID)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	if err := s.RoleRepo.AddUserRole(user, role); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveRole drops roleName from the user's role set. Returns false with no
// error when the user did not hold the role.
func (s *RBACService) RemoveRole(userID uint, roleName string) (bool, error) {
	role, err := s.RoleRepo.FindByName(roleName)
	if err == gorm.ErrRecordNotFound {
		return false, util.ErrRoleNotFound
	}
	if err != nil {
		return false, err
	}

	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return false, util.ErrUserNotFound
	}

	has, err := s.RoleRepo.UserHasRole(user.ID, role.ID)
	if err != nil {
		return false, err
	}
	if !has {
		return false, nil
	}

	if err := s.RoleRepo.RemoveUserRole(user, role); err != nil {
		return false, err
	}
	return true, nil
}
