// services/hierarchy_service.go
package services

import (
	"context"
	"errors"
	"log"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/daansetu/daansetu_backend/models"
	"github.com/daansetu/daansetu_backend/repositories"
)

const (
	// Ceilings defending against corrupted parentCoordinatorId chains. The
	// write path prevents cycles; traversal still refuses to trust that.
	maxTreeNodes = 1000
	maxTreeDepth = 32

	defaultTeamPageLimit = 20
	maxTeamPageLimit     = 100
)

// TreeNode is one node of the subordinate tree.
type TreeNode struct {
	User     models.User `json:"user"`
	Children []*TreeNode `json:"children"`
}

// TeamFilter controls GetTeamMembers.
type TeamFilter struct {
	Page       int
	Limit      int
	DirectOnly bool
	Role       models.Role
	Status     string
}

// HierarchyService builds subordinate trees over parentCoordinatorId and
// performs the rank-gated lifecycle mutations.
type HierarchyService struct {
	users repositories.UserStore
}

func NewHierarchyService(users repositories.UserStore) *HierarchyService {
	return &HierarchyService{users: users}
}

// BuildTree assembles the full subordinate tree rooted at rootID.
func (s *HierarchyService) BuildTree(ctx context.Context, rootID primitive.ObjectID) (*TreeNode, error) {
	root, err := s.users.FindByID(ctx, rootID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	rootNode := &TreeNode{User: *root, Children: []*TreeNode{}}
	visited := map[primitive.ObjectID]bool{rootID: true}

	type queued struct {
		node  *TreeNode
		depth int
	}
	queue := []queued{{node: rootNode, depth: 0}}
	visitedCount := 1

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxTreeDepth {
			log.Printf("ALERT: hierarchy depth ceiling hit under root %s", rootID.Hex())
			return nil, ErrCycleDetected
		}

		children, err := s.users.FindByParent(ctx, current.node.User.ID)
		if err != nil {
			return nil, err
		}

		sortByRankThenName(children)

		for _, child := range children {
			if visited[child.ID] {
				log.Printf("ALERT: cycle detected in hierarchy at user %s", child.ID.Hex())
				return nil, ErrCycleDetected
			}
			visited[child.ID] = true
			visitedCount++
			if visitedCount > maxTreeNodes {
				log.Printf("ALERT: hierarchy node ceiling hit under root %s", rootID.Hex())
				return nil, ErrCycleDetected
			}

			childNode := &TreeNode{User: child, Children: []*TreeNode{}}
			current.node.Children = append(current.node.Children, childNode)
			queue = append(queue, queued{node: childNode, depth: current.depth + 1})
		}
	}

	return rootNode, nil
}

// GetAllSubordinates returns the transitive closure of subordinates under
// rootID, excluding the root itself. An empty result is valid.
func (s *HierarchyService) GetAllSubordinates(ctx context.Context, rootID primitive.ObjectID) ([]models.User, error) {
	if _, err := s.users.FindByID(ctx, rootID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	visited := map[primitive.ObjectID]bool{rootID: true}
	var subordinates []models.User

	type frame struct {
		id    primitive.ObjectID
		depth int
	}
	queue := []frame{{id: rootID, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxTreeDepth {
			log.Printf("ALERT: hierarchy depth ceiling hit under root %s", rootID.Hex())
			return nil, ErrCycleDetected
		}

		children, err := s.users.FindByParent(ctx, current.id)
		if err != nil {
			return nil, err
		}

		for _, child := range children {
			if visited[child.ID] {
				log.Printf("ALERT: cycle detected in hierarchy at user %s", child.ID.Hex())
				return nil, ErrCycleDetected
			}
			visited[child.ID] = true
			subordinates = append(subordinates, child)
			if len(subordinates) > maxTreeNodes {
				log.Printf("ALERT: hierarchy node ceiling hit under root %s", rootID.Hex())
				return nil, ErrCycleDetected
			}
			queue = append(queue, frame{id: child.ID, depth: current.depth + 1})
		}
	}

	return subordinates, nil
}

// GetTeamMembers returns a filtered, paginated slice of a coordinator's team,
// either the direct children or the full closure. Sort is stable: role rank
// first, then name.
func (s *HierarchyService) GetTeamMembers(ctx context.Context, rootID primitive.ObjectID, f TeamFilter) ([]models.User, int64, error) {
	var members []models.User
	var err error

	if f.DirectOnly {
		if _, err = s.users.FindByID(ctx, rootID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, ErrUserNotFound
			}
			return nil, 0, err
		}
		members, err = s.users.FindByParent(ctx, rootID)
	} else {
		members, err = s.GetAllSubordinates(ctx, rootID)
	}
	if err != nil {
		return nil, 0, err
	}

	filtered := members[:0:0]
	for _, m := range members {
		if f.Role != "" && m.Role != f.Role {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		filtered = append(filtered, m)
	}

	sortByRankThenName(filtered)

	total := int64(len(filtered))

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultTeamPageLimit
	}
	if limit > maxTeamPageLimit {
		limit = maxTeamPageLimit
	}

	start := (page - 1) * limit
	if start >= len(filtered) {
		return []models.User{}, total, nil
	}
	end := start + limit
	if end > len(filtered) {
		end = len(filtered)
	}

	return filtered[start:end], total, nil
}

// Approve activates a pending user. The approver must strictly outrank the
// target; the approver becomes the target's parent coordinator.
func (s *HierarchyService) Approve(ctx context.Context, approver *models.User, targetID primitive.ObjectID) error {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !models.IsStrictlyAbove(approver.Role, target.Role) {
		return ErrUnauthorized
	}

	err = s.users.Activate(ctx, targetID, approver.ID)
	if errors.Is(err, repositories.ErrConflict) {
		return ErrNotPending
	}
	return err
}

// Reject marks a pending user inactive. Same rank gate as Approve.
func (s *HierarchyService) Reject(ctx context.Context, approver *models.User, targetID primitive.ObjectID) error {
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !models.IsStrictlyAbove(approver.Role, target.Role) {
		return ErrUnauthorized
	}

	return s.users.UpdateStatus(ctx, targetID, models.StatusInactive)
}

func sortByRankThenName(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool {
		ri, errI := models.RankOf(users[i].Role)
		rj, errJ := models.RankOf(users[j].Role)
		// Unknown roles sort last
		if errI != nil {
			ri = int(^uint(0) >> 1)
		}
		if errJ != nil {
			rj = int(^uint(0) >> 1)
		}
		if ri != rj {
			return ri < rj
		}
		return users[i].FullName < users[j].FullName
	})
}
