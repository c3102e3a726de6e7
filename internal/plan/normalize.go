// Package plan turns the strategist stage's unreliable output into a
// usable search plan, backfilling with synthesized tasks when the model
// underdelivers.
package plan

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/insightflow/leadscout/internal/model"
)

// BuildPlan constructs a search plan from the strategist's parsed reply.
// The icp and search_tasks fields may arrive as JSON-encoded strings;
// they are re-parsed, and malformed task entries are dropped one by one
// instead of discarding the whole list. The result is never nil: at
// worst it is a minimal plan carrying only the profile's identity, and
// a task list below minTasks is topped up with synthesized tasks.
func BuildPlan(data map[string]any, profile *model.ProductProfile, minTasks int) *model.SearchPlan {
	fields := make(map[string]any, len(data))
	for k, v := range data {
		fields[k] = v
	}

	repairStringField(fields, "icp")
	repairStringField(fields, "search_tasks")

	rawTasks, _ := fields["search_tasks"].([]any)
	delete(fields, "search_tasks")

	p := decodePlan(fields)
	if p == nil {
		zap.L().Warn("plan: strategist reply unusable, starting from profile")
		p = &model.SearchPlan{}
	}
	if p.ProductName == "" {
		p.ProductName = profile.ProductName
	}
	if p.ProductSummary == "" {
		p.ProductSummary = profile.Description
	}

	p.SearchTasks = append(p.SearchTasks, decodeTasks(rawTasks)...)

	if len(p.SearchTasks) < minTasks {
		appendDefaultTasks(p, profile, minTasks)
	}
	return p
}

// repairStringField re-parses a field that arrived as a JSON-encoded
// string. Unparseable values are removed so decoding can proceed.
func repairStringField(fields map[string]any, key string) {
	s, ok := fields[key].(string)
	if !ok {
		return
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		zap.L().Warn("plan: dropping unparseable field", zap.String("field", key))
		delete(fields, key)
		return
	}
	fields[key] = parsed
}

func decodePlan(fields map[string]any) *model.SearchPlan {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	p := &model.SearchPlan{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil
	}
	return p
}

// decodeTasks converts the raw task list element by element so one
// malformed entry does not take down its siblings.
func decodeTasks(rawTasks []any) []model.SearchTask {
	var tasks []model.SearchTask
	for _, rt := range rawTasks {
		obj, ok := rt.(map[string]any)
		if !ok {
			continue
		}
		raw, err := json.Marshal(obj)
		if err != nil {
			continue
		}
		var task model.SearchTask
		if err := json.Unmarshal(raw, &task); err != nil {
			continue
		}
		if task.QueryZH == "" && task.QueryEN == "" {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// appendDefaultTasks tops the plan up to minTasks with synthesized
// tasks, skipping any whose query pair is already planned.
func appendDefaultTasks(p *model.SearchPlan, profile *model.ProductProfile, minTasks int) {
	seen := make(map[string]struct{}, len(p.SearchTasks))
	for _, t := range p.SearchTasks {
		seen[t.DedupKey()] = struct{}{}
	}

	added := 0
	for _, t := range DefaultTasks(profile, minTasks) {
		if len(p.SearchTasks) >= minTasks {
			break
		}
		if _, dup := seen[t.DedupKey()]; dup {
			continue
		}
		seen[t.DedupKey()] = struct{}{}
		p.SearchTasks = append(p.SearchTasks, t)
		added++
	}
	if added > 0 {
		zap.L().Info("plan: appended synthesized search tasks",
			zap.Int("added", added),
			zap.Int("total", len(p.SearchTasks)),
		)
	}
}
