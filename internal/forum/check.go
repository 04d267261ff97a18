package forum

import (
	"context"
	"fmt"
	"sort"
	"time"

	"agora/internal/models"
)

// Violation is one cached value that disagrees with a full rescan.
type Violation struct {
	Entity string `json:"entity"`
	ID     uint   `json:"id"`
	Field  string `json:"field"`
	Want   string `json:"want"`
	Got    string `json:"got"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %d: %s = %s, want %s", v.Entity, v.ID, v.Field, v.Got, v.Want)
}

type checker struct {
	out []Violation
}

func (c *checker) expect(entity string, id uint, field string, want, got any) {
	w, g := display(want), display(got)
	if w != g {
		c.out = append(c.out, Violation{Entity: entity, ID: id, Field: field, Want: w, Got: g})
	}
}

func display(v any) string {
	switch x := v.(type) {
	case *time.Time:
		if x == nil {
			return "<nil>"
		}
		return x.UTC().Format(time.RFC3339Nano)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *uint:
		if x == nil {
			return "<nil>"
		}
		return fmt.Sprint(*x)
	}
	return fmt.Sprint(v)
}

// Verify rescans the whole store and reports every cached aggregate,
// position and ordering index that does not match the data.
func (s *Service) Verify(ctx context.Context) ([]Violation, error) {
	db := s.db.WithContext(ctx)
	var (
		sections []models.Section
		forums   []models.Forum
		topics   []models.Topic
		posts    []models.Post
		users    []models.User
		profiles []models.ForumProfile
	)
	for _, q := range []any{&sections, &forums, &topics, &posts, &users, &profiles} {
		if err := db.Find(q).Error; err != nil {
			return nil, err
		}
	}

	usernames := make(map[uint]string, len(users))
	for _, u := range users {
		usernames[u.ID] = u.Username
	}
	topicsByID := make(map[uint]*models.Topic, len(topics))
	for i := range topics {
		topicsByID[topics[i].ID] = &topics[i]
	}
	postsByTopic := make(map[uint][]models.Post)
	ordinaryByUser := make(map[uint]int)
	for _, p := range posts {
		postsByTopic[p.TopicID] = append(postsByTopic[p.TopicID], p)
		if !p.Meta {
			ordinaryByUser[p.UserID]++
		}
	}

	c := &checker{}

	sectionOrders := make([]int, 0, len(sections))
	for _, sec := range sections {
		sectionOrders = append(sectionOrders, sec.Order)
	}
	c.expectDense("section", 0, "order", sectionOrders, 0)

	forumOrders := make(map[uint][]int)
	for _, f := range forums {
		forumOrders[f.SectionID] = append(forumOrders[f.SectionID], f.Order)
	}
	for sectionID, orders := range forumOrders {
		c.expectDense("section", sectionID, "forum order", orders, 0)
	}

	// newest returns the Post with the greatest posted_at, ties broken by id.
	newest := func(ps []models.Post) *models.Post {
		var last *models.Post
		for i := range ps {
			p := &ps[i]
			if last == nil || p.PostedAt.After(last.PostedAt) ||
				(p.PostedAt.Equal(last.PostedAt) && p.ID > last.ID) {
				last = p
			}
		}
		return last
	}

	for _, t := range topics {
		ps := postsByTopic[t.ID]
		ordinary, meta := 0, 0
		positions := make([]int, 0, len(ps))
		for _, p := range ps {
			if p.Meta {
				meta++
			} else {
				ordinary++
			}
			positions = append(positions, p.NumInTopic)
		}
		c.expect("topic", t.ID, "post_count", ordinary, t.PostCount)
		c.expect("topic", t.ID, "metapost_count", meta, t.MetapostCount)
		c.expectDense("topic", t.ID, "num_in_topic", positions, 1)
		byPosition := append([]models.Post(nil), ps...)
		sort.Slice(byPosition, func(i, j int) bool { return byPosition[i].NumInTopic < byPosition[j].NumInTopic })
		for i := 1; i < len(byPosition); i++ {
			if byPosition[i].PostedAt.Before(byPosition[i-1].PostedAt) {
				c.out = append(c.out, Violation{
					Entity: "post", ID: byPosition[i].ID, Field: "num_in_topic",
					Want: "after post " + fmt.Sprint(byPosition[i-1].ID), Got: fmt.Sprint(byPosition[i].NumInTopic),
				})
			}
		}
		if len(ps) == 0 {
			c.out = append(c.out, Violation{Entity: "topic", ID: t.ID, Field: "posts", Want: "at least 1", Got: "0"})
			continue
		}
		last := newest(ps)
		c.expect("topic", t.ID, "last_post_at", last.PostedAt, t.LastPostAt)
		c.expect("topic", t.ID, "last_user_id", last.UserID, t.LastUserID)
		c.expect("topic", t.ID, "last_username", usernames[last.UserID], t.LastUsername)
	}

	for _, f := range forums {
		var ps []models.Post
		topicCount, ordinary := 0, 0
		for _, t := range topics {
			if t.ForumID != f.ID {
				continue
			}
			topicCount++
			for _, p := range postsByTopic[t.ID] {
				ps = append(ps, p)
				if !p.Meta {
					ordinary++
				}
			}
		}
		c.expect("forum", f.ID, "topic_count", topicCount, f.TopicCount)
		c.expect("forum", f.ID, "post_count", ordinary, f.PostCount)
		last := newest(ps)
		if last == nil {
			c.expect("forum", f.ID, "last_post_at", (*time.Time)(nil), f.LastPostAt)
			c.expect("forum", f.ID, "last_topic_id", (*uint)(nil), f.LastTopicID)
			c.expect("forum", f.ID, "last_topic_title", "", f.LastTopicTitle)
			c.expect("forum", f.ID, "last_user_id", (*uint)(nil), f.LastUserID)
			c.expect("forum", f.ID, "last_username", "", f.LastUsername)
			continue
		}
		c.expect("forum", f.ID, "last_post_at", last.PostedAt, f.LastPostAt)
		c.expect("forum", f.ID, "last_topic_id", last.TopicID, f.LastTopicID)
		c.expect("forum", f.ID, "last_topic_title", topicsByID[last.TopicID].Title, f.LastTopicTitle)
		c.expect("forum", f.ID, "last_user_id", last.UserID, f.LastUserID)
		c.expect("forum", f.ID, "last_username", usernames[last.UserID], f.LastUsername)
	}

	profiled := make(map[uint]bool, len(profiles))
	for _, p := range profiles {
		profiled[p.UserID] = true
		c.expect("profile", p.ID, "post_count", ordinaryByUser[p.UserID], p.PostCount)
	}
	for userID, n := range ordinaryByUser {
		if !profiled[userID] {
			c.out = append(c.out, Violation{Entity: "user", ID: userID, Field: "profile.post_count", Want: fmt.Sprint(n), Got: "<no profile>"})
		}
	}
	return c.out, nil
}

// expectDense checks that got holds exactly base..base+len-1.
func (c *checker) expectDense(entity string, id uint, field string, got []int, base int) {
	sorted := append([]int(nil), got...)
	sort.Ints(sorted)
	for i, v := range sorted {
		if v != base+i {
			c.out = append(c.out, Violation{
				Entity: entity, ID: id, Field: field,
				Want: fmt.Sprintf("dense from %d", base),
				Got:  fmt.Sprint(sorted),
			})
			return
		}
	}
}
