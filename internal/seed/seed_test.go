package seed

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/exam-paper/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// ── 测试辅助 ──

type mockUserStore struct {
	users  map[string]*domain.User
	failOn map[string]error
	nextID int64
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*domain.User), failOn: make(map[string]error)}
}

func (m *mockUserStore) CreateUser(user *domain.User) error {
	if err, ok := m.failOn[user.Username]; ok {
		return err
	}
	if _, ok := m.users[user.Username]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = user
	return nil
}

type mockNotifier struct {
	notified []string
	err      error
}

func (m *mockNotifier) NotifyAccountCreated(user *domain.User, _ string) error {
	m.notified = append(m.notified, user.Username)
	return m.err
}

type mockPaperStore struct {
	papers []*domain.QuestionPaper
	fail   bool
}

func (m *mockPaperStore) CreateQuestionPaper(paper *domain.QuestionPaper) error {
	if m.fail {
		return errors.New("数据库不可用")
	}
	m.papers = append(m.papers, paper)
	return nil
}

// ── AdminAccounts ──

func TestAdminAccounts(t *testing.T) {
	accounts := AdminAccounts("exam.local")
	if len(accounts) != 2 {
		t.Fatalf("期望 2 个管理员账户，实际 %d", len(accounts))
	}
	for _, account := range accounts {
		if account.Role != domain.RoleAdmin {
			t.Errorf("%s 应为管理员", account.Username)
		}
		if account.Email != account.Username+"@exam.local" {
			t.Errorf("邮箱错误: %s", account.Email)
		}
	}
}

// ── ProvisionAdmins ──

func TestProvisionAdmins_CreatesAll(t *testing.T) {
	store := newMockUserStore()
	notifier := &mockNotifier{}

	result := ProvisionAdmins(store, notifier, AdminAccounts("exam.local"), "p@ssw0rd")
	if result != (Result{Created: 2}) {
		t.Errorf("期望创建 2 个账户，实际 %+v", result)
	}
	if len(notifier.notified) != 2 {
		t.Errorf("期望发送 2 封通知，实际 %d", len(notifier.notified))
	}

	admin := store.users["admin"]
	if admin == nil {
		t.Fatal("admin 账户未创建")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("p@ssw0rd")); err != nil {
		t.Errorf("密码哈希不匹配: %v", err)
	}
}

func TestProvisionAdmins_AlreadyExists(t *testing.T) {
	store := newMockUserStore()
	accounts := AdminAccounts("exam.local")

	ProvisionAdmins(store, nil, accounts, "p@ssw0rd")
	notifier := &mockNotifier{}
	result := ProvisionAdmins(store, notifier, accounts, "p@ssw0rd")

	if result != (Result{Existing: 2}) {
		t.Errorf("第二次执行期望 2 个已存在账户，实际 %+v", result)
	}
	if len(notifier.notified) != 0 {
		t.Error("已存在的账户不应发送通知")
	}
}

func TestProvisionAdmins_PartialFailure(t *testing.T) {
	store := newMockUserStore()
	store.failOn["admin"] = errors.New("连接中断")
	store.failOn["examadmin"] = &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}

	result := ProvisionAdmins(store, nil, AdminAccounts("exam.local"), "p@ssw0rd")
	if result != (Result{Failed: 1, Existing: 1}) {
		t.Errorf("期望 1 个失败 1 个已存在，实际 %+v", result)
	}
}

func TestProvisionAdmins_NotifierErrorIgnored(t *testing.T) {
	store := newMockUserStore()
	notifier := &mockNotifier{err: errors.New("队列不可用")}

	result := ProvisionAdmins(store, notifier, AdminAccounts("exam.local"), "p@ssw0rd")
	if result.Created != 2 {
		t.Errorf("通知失败不应影响创建结果，实际 %+v", result)
	}
}

func TestIsDuplicateUser(t *testing.T) {
	if !IsDuplicateUser(&pgconn.PgError{ConstraintName: "users_username_key"}) {
		t.Error("用户名重复应被识别")
	}
	if IsDuplicateUser(&pgconn.PgError{ConstraintName: "question_papers_code_key"}) {
		t.Error("其他约束不应被识别为用户重复")
	}
	if IsDuplicateUser(errors.New("其他错误")) {
		t.Error("普通错误不应被识别为用户重复")
	}
}

// ── SeedQuestionPapers ──

func TestSeedQuestionPapers(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	store := &mockPaperStore{}
	if got := SeedQuestionPapers(store, 5, now); got != 5 || len(store.papers) != 5 {
		t.Errorf("期望插入 5 份试卷，实际 %d", got)
	}

	failing := &mockPaperStore{fail: true}
	if got := SeedQuestionPapers(failing, 3, now); got != 0 {
		t.Errorf("插入失败时期望 0，实际 %d", got)
	}
}
