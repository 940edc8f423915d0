package service

import (
	"errors"

	"exam_portal_backend/internal/model"
	"exam_portal_backend/internal/repository"
	"exam_portal_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	UserRepo       *repository.UserRepository
	DepartmentRepo *repository.DepartmentRepository
}

func NewUserService(userRepo *repository.UserRepository, departmentRepo *repository.DepartmentRepository) *UserService {
	return &UserService{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
	}
}

func (s *UserService) GetUser(id uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	return user, err
}

type ProfileUpdateRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	DepartmentID *uint  `json:"departmentId"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdateRequest) (*model.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.DepartmentID != nil {
		user.DepartmentID = req.DepartmentID
	}
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return util.Validationf("current password is incorrect")
	}
	if len(newPassword) < 8 {
		return util.Validationf("password must be at least 8 characters")
	}
	// 走 Create 钩子以外的路径需要自行哈希，这里复用模型钩子逻辑
	user.Password = newPassword
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	return s.UserRepo.Update(user)
}

func (s *UserService) ListUsers(role model.UserRole, departmentID uint, page, limit int) ([]model.User, int, error) {
	return s.UserRepo.List(role, departmentID, page, limit)
}

func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}

func (s *UserService) ListDepartments(activeOnly bool) ([]model.Department, error) {
	return s.DepartmentRepo.List(activeOnly)
}

func (s *UserService) CreateDepartment(name, description string) (*model.Department, error) {
	if name == "" {
		return nil, util.Validationf("department name required")
	}
	dept := &model.Department{Name: name, Description: description, IsActive: true}
	if err := s.DepartmentRepo.Create(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *UserService) UpdateDepartment(id uint, name, description string, isActive *bool) (*model.Department, error) {
	dept, err := s.DepartmentRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.Validationf("department %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	if name != "" {
		dept.Name = name
	}
	if description != "" {
		dept.Description = description
	}
	if isActive != nil {
		dept.IsActive = *isActive
	}
	if err := s.DepartmentRepo.Update(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// DeleteDepartment 仍有成员的部门不允许删除
func (s *UserService) DeleteDepartment(id uint) error {
	if _, err := s.DepartmentRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.Validationf("department %d not found", id)
		}
		return err
	}
	_, total, err := s.UserRepo.List("", id, 1, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return util.StateConflictf("department still has %d members", total)
	}
	return s.DepartmentRepo.Delete(id)
}
