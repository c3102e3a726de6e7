package plan

import (
	"fmt"
	"strings"

	"github.com/insightflow/leadscout/internal/model"
)

const (
	maxTermLen     = 40
	maxTerms       = 12
	maxUseCases    = 8
	maxTargetUsers = 8
	maxFeatures    = 6
)

type taskPattern struct {
	strategy model.SearchStrategy
	queryZH  string
	queryEN  string
	expected string
}

// taskPatterns is ordered. Task generation walks terms in the outer loop
// and patterns in the inner loop, so each term is exercised across every
// buying signal before the next term starts.
var taskPatterns = []taskPattern{
	{model.StrategyProcurement, "%s 采购 招标", "%s procurement tender", "发布过相关采购或招标的企业"},
	{model.StrategyHiringSignal, "%s 岗位 招聘", "%s related job openings hiring", "正在招聘相关岗位的企业"},
	{model.StrategyFundingNews, "%s 融资 业务扩张", "%s funding round expansion", "近期融资或扩张中的企业"},
	{model.StrategyIndustryForum, "%s 痛点 解决方案 讨论", "%s pain points discussion forum", "在论坛讨论相关痛点的企业"},
	{model.StrategyCompetitorCustomer, "%s 替代方案 客户案例", "%s alternative vendor customer case", "使用竞品且存在替换空间的企业"},
}

// DefaultTasks deterministically synthesizes up to count search tasks
// from the profile, cross-producting profile terms against the fixed
// pattern list. The same profile always yields the same tasks.
func DefaultTasks(profile *model.ProductProfile, count int) []model.SearchTask {
	if count <= 0 || profile == nil {
		return nil
	}

	terms := profileTerms(profile)
	tasks := make([]model.SearchTask, 0, count)
	for _, term := range terms {
		for _, p := range taskPatterns {
			tasks = append(tasks, model.SearchTask{
				TaskID:         fmt.Sprintf("default_%d", len(tasks)+1),
				Strategy:       p.strategy,
				QueryZH:        fmt.Sprintf(p.queryZH, term),
				QueryEN:        fmt.Sprintf(p.queryEN, term),
				ExpectedResult: p.expected,
			})
			if len(tasks) == count {
				return tasks
			}
		}
	}
	return tasks
}

// profileTerms assembles the ordered search-term list: product name
// first, then use cases, target users, and core features. Terms are
// truncated, deduplicated case-insensitively, and capped.
func profileTerms(profile *model.ProductProfile) []string {
	candidates := []string{profile.ProductName}
	candidates = append(candidates, capped(profile.UseCases, maxUseCases)...)
	candidates = append(candidates, capped(profile.TargetUsers, maxTargetUsers)...)
	candidates = append(candidates, capped(profile.CoreFeatures, maxFeatures)...)

	seen := make(map[string]struct{}, len(candidates))
	terms := make([]string, 0, maxTerms)
	for _, c := range candidates {
		term := truncate(strings.TrimSpace(c), maxTermLen)
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
		if len(terms) == maxTerms {
			break
		}
	}
	return terms
}

func capped(items []string, max int) []string {
	if len(items) > max {
		return items[:max]
	}
	return items
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
