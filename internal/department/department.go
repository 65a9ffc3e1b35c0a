package department

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/department"
)

type Department struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ParentID  *int64    `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TreeNode is a unit with its nested teams. MemberCount includes the members
// of every descendant team.
type TreeNode struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	ParentID    *int64      `json:"parent_id"`
	MemberCount int64       `json:"member_count"`
	Teams       []*TreeNode `json:"teams"`
}

type ListFilter struct {
	ParentID *int64
	TopLevel bool
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:        d.ID,
		Name:      d.Name,
		Code:      d.Code,
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:        d.ID,
		Name:      d.Name,
		Code:      d.Code,
		ParentID:  d.ParentID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// BuildTree nests departments under their parents. Departments whose parent is
// missing from the input are treated as top level.
func BuildTree(departments []*Department, members map[int64]int64) []*TreeNode {
	nodes := make(map[int64]*TreeNode, len(departments))
	for _, d := range departments {
		nodes[d.ID] = &TreeNode{
			ID:       d.ID,
			Name:     d.Name,
			Code:     d.Code,
			ParentID: d.ParentID,
			Teams:    []*TreeNode{},
		}
	}

	roots := make([]*TreeNode, 0)
	for _, d := range departments {
		node := nodes[d.ID]
		if d.ParentID != nil {
			if parent, ok := nodes[*d.ParentID]; ok && parent != node {
				parent.Teams = append(parent.Teams, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	for _, root := range roots {
		countMembers(root, members, map[int64]bool{})
	}
	return roots
}

func countMembers(n *TreeNode, members map[int64]int64, seen map[int64]bool) int64 {
	if seen[n.ID] {
		return 0
	}
	seen[n.ID] = true

	total := members[n.ID]
	for _, team := range n.Teams {
		total += countMembers(team, members, seen)
	}
	n.MemberCount = total
	return total
}
