package seed

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type Account struct {
	Username string
	FullName string
	Email    string
	Role     domain.Role
}

// AdminAccounts 返回需要预置的两个管理员账户
func AdminAccounts(emailDomain string) []Account {
	return []Account{
		{
			Username: "admin",
			FullName: "系统管理员",
			Email:    "admin@" + emailDomain,
			Role:     domain.RoleAdmin,
		},
		{
			Username: "examadmin",
			FullName: "考务管理员",
			Email:    "examadmin@" + emailDomain,
			Role:     domain.RoleAdmin,
		},
	}
}

type UserCreator interface {
	CreateUser(user *domain.User) error
}

// Notifier 在账户创建成功后通知账户所有者
type Notifier interface {
	NotifyAccountCreated(user *domain.User, password string) error
}

type Result struct {
	Created  int
	Existing int
	Failed   int
}

// IsDuplicateUser 判断错误是否由用户名或邮箱重复导致
func IsDuplicateUser(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.ConstraintName {
	case "users_username_key", "users_email_key":
		return true
	default:
		return false
	}
}

// ProvisionAdmins 依次创建账户，已存在的账户会被跳过，单个账户失败不影响其余账户
func ProvisionAdmins(store UserCreator, notifier Notifier, accounts []Account, password string) Result {
	result := Result{}

	for _, account := range accounts {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("无法生成密码哈希", "username", account.Username, "error", err)
			result.Failed++
			continue
		}

		user := &domain.User{
			Username:     account.Username,
			PasswordHash: string(passwordHash),
			FullName:     account.FullName,
			Email:        account.Email,
			Role:         account.Role,
		}

		if err := store.CreateUser(user); err != nil {
			if IsDuplicateUser(err) {
				slog.Info("账户已存在，跳过", "username", account.Username)
				result.Existing++
				continue
			}
			slog.Error("无法创建账户", "username", account.Username, "error", err)
			result.Failed++
			continue
		}

		slog.Info("账户创建成功", "username", user.Username, "id", user.ID)
		result.Created++

		if notifier == nil {
			continue
		}
		// 通知失败不影响账户本身的创建结果
		if err := notifier.NotifyAccountCreated(user, password); err != nil {
			slog.Error("无法发送账户通知", "username", user.Username, "error", err)
		}
	}

	return result
}
