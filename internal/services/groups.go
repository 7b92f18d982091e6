package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lespetitsreves/lprds/internal/models"
)

// AssignChildren reconciles a group's membership against the given selection:
// children no longer selected are unassigned, newly selected ones assigned,
// unchanged ones untouched. Runs in one transaction so there is no window
// where the group is empty.
//
// Capacity is advisory: exceeding it is refused unless force is set (admin
// override), matching the UI's soft limit.
func AssignChildren(gdb *gorm.DB, groupID string, childIDs []string, force bool) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !force && group.Capacity > 0 && len(childIDs) > group.Capacity {
			return ErrCapacityExceeded
		}

		var current []string
		if err := tx.Model(&models.Child{}).Where("group_id = ?", groupID).
			Pluck("id", &current).Error; err != nil {
			return err
		}

		want := make(map[string]bool, len(childIDs))
		for _, id := range childIDs {
			want[id] = true
		}
		have := make(map[string]bool, len(current))
		for _, id := range current {
			have[id] = true
		}

		var removed, added []string
		for _, id := range current {
			if !want[id] {
				removed = append(removed, id)
			}
		}
		for _, id := range childIDs {
			if !have[id] {
				added = append(added, id)
			}
		}

		if len(removed) > 0 {
			if err := tx.Model(&models.Child{}).Where("id IN ?", removed).
				Update("group_id", "").Error; err != nil {
				return err
			}
		}
		if len(added) > 0 {
			res := tx.Model(&models.Child{}).Where("id IN ?", added).
				Update("group_id", groupID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != int64(len(added)) {
				return ErrNotFound
			}
		}
		return nil
	})
}

// GroupChildren lists the current members of a group.
func GroupChildren(gdb *gorm.DB, groupID string) ([]models.Child, error) {
	var children []models.Child
	err := gdb.Where("group_id = ?", groupID).
		Order("last_name ASC, first_name ASC").Find(&children).Error
	return children, err
}

// EducatorChildren scopes an educator's visible child set: every child in a
// group assigned to them. Mirrors the get_educator_children procedure of the
// hosted backend this replaces.
func EducatorChildren(gdb *gorm.DB, educatorID string) ([]models.Child, error) {
	var children []models.Child
	err := gdb.
		Joins("JOIN groups ON groups.id = children.group_id").
		Where("groups.assigned_educator_id = ?", educatorID).
		Order("children.last_name ASC, children.first_name ASC").
		Find(&children).Error
	return children, err
}

// ParentChildren scopes a parent's visible child set via the relation table.
// Mirrors get_parent_children.
func ParentChildren(gdb *gorm.DB, parentID string) ([]models.Child, error) {
	var children []models.Child
	err := gdb.
		Joins("JOIN parent_children pcr ON pcr.child_id = children.id").
		Where("pcr.parent_id = ?", parentID).
		Order("children.last_name ASC, children.first_name ASC").
		Find(&children).Error
	return children, err
}

// LinkedToChild reports whether the parent is linked to the child.
func LinkedToChild(gdb *gorm.DB, parentID, childID string) (bool, error) {
	var n int64
	err := gdb.Model(&models.ParentChildRelation{}).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Count(&n).Error
	return n > 0, err
}
