package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// Versions looks a software title up by name and reports which package
// serves each of its versions and which version each bound patch policy
// targets.
func (s Service) Versions(ctx context.Context, req VersionsRequest) (VersionsResult, error) {
	name := strings.TrimSpace(req.Title)
	if name == "" {
		return VersionsResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("software title name is required")
	}
	reconciler, err := s.reconciler()
	if err != nil {
		return VersionsResult{}, err
	}
	title, err := reconciler.FindTitle(ctx, name)
	if err != nil {
		return VersionsResult{}, wrapCoreError(err)
	}
	policies, err := reconciler.ListPolicyVersions(ctx, title)
	if err != nil {
		return VersionsResult{}, wrapCoreError(err)
	}
	return VersionsResult{
		Title:    title,
		Packages: newVersionView(title.Versions, req.Versions, req.SortVersions),
		Policies: newVersionView(policies, req.Versions, req.SortVersions),
	}, nil
}
