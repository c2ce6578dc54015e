// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/modgraph/modgraph/internal/planerr"
)

const (
	DuplicateNameId        = Id(planerr.KindDuplicateName)
	UnknownModuleId        = Id(planerr.KindUnknownModule)
	UnknownTargetId        = Id(planerr.KindUnknownTarget)
	UnresolvedDependencyId = Id(planerr.KindUnresolvedDependency)
	DependencyCycleId      = Id(planerr.KindCycle)
	InvalidEdgeId          = Id(planerr.KindInvalidEdge)
	TargetModuleMismatchId = Id(planerr.KindTargetModuleMismatch)

	DescriptorParseFailedId Id = "descriptor_parse_failed"
	NoDescriptorsId         Id = "no_descriptors"
	ConfigLoadFailedId      Id = "config_load_failed"
)

type (
	// Id names a catalog entry. Planning error ids equal their planerr.Kind.
	Id string

	// MarkdownMsg is the body of a catalog entry.
	MarkdownMsg string

	// Match maps a sentinel error to a catalog entry.
	Match struct {
		Err error
		Id  Id
	}

	// Issue is one catalog entry.
	Issue struct {
		id       Id
		title    string
		mdMsg    MarkdownMsg
		docLinks []string
	}
)

func (id Id) String() string { return string(id) }

func (i *Issue) Id() Id { return i.id }

// Title is a one-line summary used in listings.
func (i *Issue) Title() string { return i.title }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) DocLinks() []string { return slices.Clone(i.docLinks) }

// Markdown returns the full page including the "See also" section.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- " + link + "\n")
		}
	}
	return sb.String()
}

// Render renders the page for the terminal. stylePath is a glamour style
// name ("dark", "light", "notty", "auto") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	duplicateNameIssue = &Issue{
		id:    DuplicateNameId,
		title: "A module or target name is declared twice",
		mdMsg: `
# Duplicate descriptor name

Modules and targets share one namespace. The same name was registered from two
descriptor files, or a module and a target use the same name.

## Things you can try
- Rename one of the two descriptors
- Remove the stale copy if a descriptor was moved between files
- Run ` + "`modgraph modules`" + ` to list every module with its source file`,
		docLinks: []string{"modgraph help modules"},
	}

	unknownModuleIssue = &Issue{
		id:    UnknownModuleId,
		title: "A target root names no registered module",
		mdMsg: `
# Unknown module

A target lists a root module that no descriptor file declares.

## Things you can try
- Check the spelling of the root in the target descriptor
- Make sure the file declaring the module is under a descriptor path
~~~
$ modgraph modules
~~~`,
	}

	unknownTargetIssue = &Issue{
		id:    UnknownTargetId,
		title: "The requested target does not exist",
		mdMsg: `
# Unknown target

The target named on the command line is not declared in any descriptor file.

## Things you can try
- List the declared targets:
~~~
$ modgraph targets
~~~`,
	}

	unresolvedDependencyIssue = &Issue{
		id:    UnresolvedDependencyId,
		title: "A dependency names neither a module nor a target",
		mdMsg: `
# Unresolved dependency

A module lists a dependency whose name is not registered at all.

## Things you can try
- Check the spelling in ` + "`public_deps`" + ` or ` + "`private_deps`" + `
- Add the descriptor file of the missing module to a descriptor path
- If the module comes from a plugin, check that the plugin descriptors are loaded`,
	}

	dependencyCycleIssue = &Issue{
		id:    DependencyCycleId,
		title: "Modules depend on each other in a cycle",
		mdMsg: `
# Dependency cycle

The dependency graph contains a cycle, so no build order exists. The error
lists the full cycle, starting and ending with the same module.

## Things you can try
- Move the shared code into a new module both sides depend on
- Turn one edge around if only one direction is really needed
- Render the graph to find the offending edge:
~~~
$ modgraph graph <target>
~~~`,
	}

	invalidEdgeIssue = &Issue{
		id:    InvalidEdgeId,
		title: "A dependency edge cannot exist in a build graph",
		mdMsg: `
# Invalid dependency edge

One of the following was found:

- a module depends on itself
- a module depends on a target; targets are products, not libraries
- a target root names another target
- a dependency is declared both public and private by the same module

## Things you can try
- Remove the self reference
- Depend on the target's root modules instead of the target
- Keep each dependency in exactly one of the two lists`,
	}

	targetModuleMismatchIssue = &Issue{
		id:    TargetModuleMismatchId,
		title: "A module is not allowed in the target type",
		mdMsg: `
# Module not allowed in target

A module marked ` + "`editor_only`" + ` ended up in a game, client or server target,
or a module marked ` + "`game_only`" + ` ended up in an editor target. The error shows
the dependency chain that pulled the module in.

## Things you can try
- Move the dependency to a module that only the matching target includes
- Change the module's ` + "`availability`" + ` if the restriction is stale`,
	}

	descriptorParseFailedIssue = &Issue{
		id:    DescriptorParseFailedId,
		title: "A descriptor file could not be decoded",
		mdMsg: `
# Descriptor parse failure

A descriptor file has a syntax error, an unknown field, or a value outside its
allowed set. Supported formats are CUE, TOML, YAML and HCL.

## Things you can try
- Check the line reported in the error
- Compare the file with the descriptor reference:
~~~
$ modgraph config dump
~~~`,
	}

	noDescriptorsIssue = &Issue{
		id:    NoDescriptorsId,
		title: "No descriptor files were found",
		mdMsg: `
# No descriptors found

None of the descriptor paths contains a ` + "`.cue`, `.toml`, `.yaml`, `.yml` or `.hcl`" + ` file.
Hidden directories are skipped.

## Things you can try
- Pass a path explicitly:
~~~
$ modgraph plan --descriptors ./Source <target>
~~~
- Set ` + "`descriptor_paths`" + ` in the configuration file`,
	}

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "The configuration file is invalid",
		mdMsg: `
# Configuration error

The configuration file could not be read or does not match the schema.

## Things you can try
- Show the effective configuration:
~~~
$ modgraph config show
~~~
- Write a fresh default file:
~~~
$ modgraph config init
~~~`,
	}

	issues = map[Id]*Issue{
		duplicateNameIssue.Id():         duplicateNameIssue,
		unknownModuleIssue.Id():         unknownModuleIssue,
		unknownTargetIssue.Id():         unknownTargetIssue,
		unresolvedDependencyIssue.Id():  unresolvedDependencyIssue,
		dependencyCycleIssue.Id():       dependencyCycleIssue,
		invalidEdgeIssue.Id():           invalidEdgeIssue,
		targetModuleMismatchIssue.Id():  targetModuleMismatchIssue,
		descriptorParseFailedIssue.Id(): descriptorParseFailedIssue,
		noDescriptorsIssue.Id():         noDescriptorsIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
	}
)

// Values returns every catalog entry sorted by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return strings.Compare(string(a.id), string(b.id)) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Lookup accepts an id in snake_case or kebab-case.
func Lookup(s string) *Issue {
	return Get(Id(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")))
}

// ForError returns the entry describing err. Planning errors map by kind;
// otherwise the first match whose sentinel is in err's chain wins. It
// returns nil when nothing matches.
func ForError(err error, matches ...Match) *Issue {
	if pe, ok := planerr.As(err); ok {
		return Get(Id(pe.Kind()))
	}
	for _, m := range matches {
		if errors.Is(err, m.Err) {
			return Get(m.Id)
		}
	}
	return nil
}
