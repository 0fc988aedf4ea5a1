package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"ultramacro/backend/internal/model"
)

func TestCatalogService_ListDivisions(t *testing.T) {
	repos := newMockRepos()
	svc := NewCatalogService(repos.repository(), zap.NewNop())
	reg := repos.addRegulation("لائحة 2018")
	repos.addDivision(&model.Division{Name: "الرياضيات", Group: true, RegulationID: reg.ID})
	repos.addDivision(&model.Division{Name: "الكيمياء", Group: true, RegulationID: reg.ID + 1})

	divs, err := svc.ListDivisions(context.Background(), reg.ID)
	if err != nil {
		t.Fatalf("ListDivisions 应成功: %v", err)
	}
	if len(divs) != 1 || divs[0].Name != "الرياضيات" || !divs[0].Group {
		t.Errorf("按规章过滤错误: %+v", divs)
	}
}

func TestCatalogService_ListRegulationsAndDepartments(t *testing.T) {
	repos := newMockRepos()
	svc := NewCatalogService(repos.repository(), zap.NewNop())
	repos.addRegulation("لائحة 2018")
	repos.addDepartment("Physics")

	regs, err := svc.ListRegulations(context.Background())
	if err != nil || len(regs) != 1 || regs[0].MaxGPA != 4 {
		t.Errorf("ListRegulations 结果错误: %+v, err=%v", regs, err)
	}
	depts, err := svc.ListDepartments(context.Background())
	if err != nil || len(depts) != 1 || depts[0].Name != "Physics" {
		t.Errorf("ListDepartments 结果错误: %+v, err=%v", depts, err)
	}
}
