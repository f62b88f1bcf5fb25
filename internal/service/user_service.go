package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/firasabed78/culinary--academy/internal/dto"
	"github.com/firasabed78/culinary--academy/internal/model"
	"github.com/firasabed78/culinary--academy/internal/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
)

// UserService 用户管理业务接口
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	GetByID(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	Update(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	AssignRole(ctx context.Context, userID string, role string) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return resp, total, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	resp := toUserDetailResponse(user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, userID string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Email != nil {
		// 改邮箱时仍需保证唯一
		if existing, err := s.repo.User.GetByEmail(ctx, *req.Email); err == nil && existing.UserID != userID {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.ProfilePicture != nil {
		updates["profile_picture"] = *req.ProfilePicture
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.repo.User.Update(ctx, userID, updates); err != nil {
			s.logger.Error("更新用户失败", zap.Error(err))
			return nil, err
		}
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// AssignRole 管理员分配用户角色
func (s *userService) AssignRole(ctx context.Context, userID string, role string) (*dto.UserResponse, error) {
	switch role {
	case model.RoleStudent, model.RoleInstructor, model.RoleAdmin:
	default:
		return nil, ErrInvalidRole
	}

	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := s.repo.User.Update(ctx, userID, map[string]interface{}{"role": role}); err != nil {
		s.logger.Error("分配角色失败", zap.Error(err))
		return nil, err
	}

	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

// Deactivate 停用账户（保留历史记录）
func (s *userService) Deactivate(ctx context.Context, userID string) error {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return s.repo.User.Update(ctx, userID, map[string]interface{}{"is_active": false})
}

// Delete 删除用户；有关联记录的用户改为停用
func (s *userService) Delete(ctx context.Context, userID string) error {
	if _, err := s.repo.User.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	owned, err := s.repo.User.CountOwnedRecords(ctx, userID)
	if err != nil {
		s.logger.Error("统计用户关联记录失败", zap.Error(err))
		return err
	}
	if owned > 0 {
		s.logger.Info("用户存在关联记录，执行停用", zap.String("user_id", userID), zap.Int64("owned", owned))
		return s.repo.User.Update(ctx, userID, map[string]interface{}{"is_active": false})
	}

	return s.repo.User.Delete(ctx, userID)
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.UserID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

func toUserDetailResponse(u *model.User) dto.UserDetailResponse {
	return dto.UserDetailResponse{
		ID:             u.UserID,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		Phone:          u.Phone,
		Address:        u.Address,
		ProfilePicture: u.ProfilePicture,
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
	}
}
