package seed

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// fakeRegulationRepo 内存版 RegulationRepository
type fakeRegulationRepo struct {
	byName    map[string]*model.Regulation
	createErr error
}

func (f *fakeRegulationRepo) Create(_ context.Context, reg *model.Regulation) error {
	if f.createErr != nil {
		return f.createErr
	}
	reg.ID = len(f.byName) + 1
	cp := *reg
	f.byName[reg.Name] = &cp
	return nil
}
func (f *fakeRegulationRepo) GetByID(_ context.Context, id int) (*model.Regulation, error) {
	for _, r := range f.byName {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRegulationRepo) GetByName(_ context.Context, name string) (*model.Regulation, error) {
	if r, ok := f.byName[name]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeRegulationRepo) List(_ context.Context) ([]model.Regulation, error) {
	list := make([]model.Regulation, 0, len(f.byName))
	for _, r := range f.byName {
		list = append(list, *r)
	}
	return list, nil
}

func newFakeRepo() (*repository.Repository, *fakeRegulationRepo) {
	fake := &fakeRegulationRepo{byName: map[string]*model.Regulation{}}
	return &repository.Repository{Regulation: fake}, fake
}

func TestEnsureRegulations_CreatesMissingOnce(t *testing.T) {
	repo, fake := newFakeRepo()
	seeds := []config.RegulationSeed{
		{Name: "لائحة 2018", MaxGPA: 4},
		{Name: "لائحة 2022"},
	}

	n, err := EnsureRegulations(context.Background(), repo, seeds, zap.NewNop())
	if err != nil {
		t.Fatalf("EnsureRegulations 应成功: %v", err)
	}
	if n != 2 || len(fake.byName) != 2 {
		t.Fatalf("期望创建 2 条规章，实际 n=%d stored=%d", n, len(fake.byName))
	}
	if fake.byName["لائحة 2022"].MaxGPA != 4 {
		t.Errorf("未配置 max_gpa 时应默认 4，实际=%d", fake.byName["لائحة 2022"].MaxGPA)
	}

	// 再次执行不重复创建
	if _, err := EnsureRegulations(context.Background(), repo, seeds, zap.NewNop()); err != nil {
		t.Fatalf("重复执行应成功: %v", err)
	}
	if len(fake.byName) != 2 {
		t.Errorf("重复执行不应新增规章，实际=%d", len(fake.byName))
	}
}

func TestEnsureRegulations_CollectsErrors(t *testing.T) {
	repo, fake := newFakeRepo()
	fake.createErr = errors.New("db down")

	n, err := EnsureRegulations(context.Background(), repo, []config.RegulationSeed{{Name: ""}, {Name: "لائحة 2018"}}, zap.NewNop())
	if err == nil {
		t.Fatal("期望返回合并后的错误")
	}
	if n != 0 {
		t.Errorf("期望 0 条成功，实际=%d", n)
	}
	if !errors.Is(err, fake.createErr) {
		t.Errorf("合并错误应包含底层错误: %v", err)
	}
}
