// Package auth holds the authorisation predicates used before any forum
// mutation. They are pure functions of group membership, ownership and
// lock state; Groups must be loaded on the users passed in.
package auth

import (
	"agora/internal/models"
)

// IsAdmin 是否为管理员
func IsAdmin(u *models.User) bool {
	return u != nil && u.InGroup(models.GroupAdmins)
}

// IsModerator 管理员同样具有版主权限
func IsModerator(u *models.User) bool {
	return u != nil && (u.InGroup(models.GroupModerators) || IsAdmin(u))
}

// UserCanEditPost reports whether u may edit p. Pass the Post's Topic to
// take its lock state into account; a nil topic skips that check.
func UserCanEditPost(u *models.User, p *models.Post, topic *models.Topic) bool {
	if IsModerator(u) {
		return true
	}
	if u == nil || p.UserID != u.ID {
		return false
	}
	return topic == nil || !topic.Locked
}

// UserCanEditTopic: moderators always, creators only while unlocked.
func UserCanEditTopic(u *models.User, t *models.Topic) bool {
	if IsModerator(u) {
		return true
	}
	return u != nil && t.UserID == u.ID && !t.Locked
}

func UserCanEditUserProfile(actor, target *models.User) bool {
	if IsModerator(actor) {
		return true
	}
	return actor != nil && target != nil && actor.ID == target.ID
}

// UserCanPostIn reports whether u may reply to t. Meta posts are reserved
// for moderators, as are replies to locked or hidden Topics.
func UserCanPostIn(u *models.User, t *models.Topic, meta bool) bool {
	if u == nil {
		return false
	}
	if IsModerator(u) {
		return true
	}
	return !meta && !t.Locked && !t.Hidden
}
