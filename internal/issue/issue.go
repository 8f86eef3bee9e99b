// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigFileNotFoundId Id = iota + 1
	ConfigLoadFailedId
	KeyNotFoundId
	InvalidPathId
	ReadOnlyConfigId
	DuplicateConfigId
	OverrideParseFailedId
	SerializationVersionId
	RepoConfigNotFoundId
	RepoConfigInvalidId
	NotEnoughConfigsId
	UnsupportedFormatId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue's Markdown with glamour. stylePath is a glamour
// style name ("dark", "light", "notty") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	links := append(slices.Clone(i.docLinks), i.extLinks...)
	if len(links) > 0 {
		md += "\n\n## See also\n"
		for _, link := range links {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	configFileNotFoundIssue = &Issue{
		id: ConfigFileNotFoundId,
		mdMsg: `
# Config file not found!

The config file passed on the command line does not exist.

## Things you can try:
- Check the path for typos; relative paths are resolved from the current directory
- Use one of the supported extensions: ` + "`.cue`, `.yaml`, `.yml`, `.toml`, `.json`, `.hcl`" + `
- For a saved config directory, use ` + "`runcfg load <dir> <tag>`" + ` instead`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the config file!

The file was found but could not be parsed into a config tree.

## Things you can try:
- Check the syntax of the file; the error above names the line or field
- Make sure the document root is a mapping, not a list or a scalar
- CUE documents must be concrete: every field needs a value

~~~
$ runcfg validate experiment.cue
~~~`,
	}

	keyNotFoundIssue = &Issue{
		id: KeyNotFoundId,
		mdMsg: `
# Key not found!

A lookup asked for a key that the config does not contain.

## Things you can try:
- List the available keys:
~~~
$ runcfg show experiment.cue
~~~
- Dotted keys (` + "`a.b.c`" + `) address nested subtrees; a literal key containing dots wins over the nested path`,
	}

	invalidPathIssue = &Issue{
		id: InvalidPathId,
		mdMsg: `
# Invalid config path!

The path descends through a value that is not a subtree, or it is empty.

## Things you can try:
- Check the shape of the config with ` + "`runcfg show`" + `
- Replace the leaf with a subtree first if the nesting is intended`,
	}

	readOnlyConfigIssue = &Issue{
		id: ReadOnlyConfigId,
		mdMsg: `
# Config value is read-only!

The config uses the ` + "`assign_once`" + ` update mode, so a key cannot get a different value once set.
With ` + "`no_clobbering`" + `, a leaf cannot be replaced by a subtree (or the other way around).

## Things you can try:
- Set the override only once
- Switch the update mode before the assignment:
~~~
$ runcfg show --update-mode overwrite experiment.cue
~~~`,
	}

	duplicateConfigIssue = &Issue{
		id: DuplicateConfigId,
		mdMsg: `
# Duplicate configs!

Two entries of a config list have identical content. Lists require every config to differ.

## Things you can try:
- Remove one of the two files named in the error
- Compare them with ` + "`runcfg diff a.cue b.cue`" + ``,
	}

	overrideParseFailedIssue = &Issue{
		id: OverrideParseFailedId,
		mdMsg: `
# Invalid config override!

Overrides use the form ` + "`(<path>),(<value>)`" + `, where the path is a tuple of quoted strings
and the value is a literal expression.

## Examples:
~~~
--set-config-value '("build_model", "activation"),("relu")'
--set-config-value '("meta", "seed"),(int(42))'
--set-config-value '("meta", "enabled"),(True)'
~~~`,
	}

	serializationVersionIssue = &Issue{
		id: SerializationVersionId,
		mdMsg: `
# Unsupported serialization version!

The saved config directory was written by a format version this build cannot read.
Supported versions are ` + "`v2`" + ` and ` + "`v3`" + `; a missing marker file means ` + "`v2`" + `.

## Things you can try:
- Check the content of ` + "`config_version.txt`" + ` in the directory
- Save the config again with this build`,
	}

	repoConfigNotFoundIssue = &Issue{
		id: RepoConfigNotFoundId,
		mdMsg: `
# Repository settings not found!

No ` + "`repo_config.yaml`" + ` was found in the current directory or any parent directory.

## Search order:
1. The ` + "`--repo-config`" + ` flag
2. The ` + "`RUNCFG_REPO_CONFIG_PATH`" + ` environment variable
3. ` + "`repo_config.yaml`" + ` in the current directory and its parents`,
	}

	repoConfigInvalidIssue = &Issue{
		id: RepoConfigInvalidId,
		mdMsg: `
# Invalid repository settings!

` + "`repo_config.yaml`" + ` does not match the expected schema.

## Minimal example:
~~~yaml
repo_info:
  repo_name: helpers
  github_repo_account: causify-ai
  github_host_name: github.com
  issue_prefix: HelpersTask
docker_info:
  docker_image_name: helpers
~~~`,
	}

	notEnoughConfigsIssue = &Issue{
		id: NotEnoughConfigsId,
		mdMsg: `
# Not enough configs!

Intersections and diffs compare at least two configs.

## Things you can try:
~~~
$ runcfg diff a.cue b.cue
~~~`,
	}

	unsupportedFormatIssue = &Issue{
		id: UnsupportedFormatId,
		mdMsg: `
# Unsupported config format!

Supported inputs are CUE, YAML, TOML, JSON and HCL. Export supports CUE, YAML, TOML and JSON.`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A config file or directory could not be read or written.

## Things you can try:
- Check the permissions of the file and its parent directory
- Save into a directory you own`,
	}

	issues = map[Id]*Issue{
		configFileNotFoundIssue.Id():   configFileNotFoundIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		keyNotFoundIssue.Id():          keyNotFoundIssue,
		invalidPathIssue.Id():          invalidPathIssue,
		readOnlyConfigIssue.Id():       readOnlyConfigIssue,
		duplicateConfigIssue.Id():      duplicateConfigIssue,
		overrideParseFailedIssue.Id():  overrideParseFailedIssue,
		serializationVersionIssue.Id(): serializationVersionIssue,
		repoConfigNotFoundIssue.Id():   repoConfigNotFoundIssue,
		repoConfigInvalidIssue.Id():    repoConfigInvalidIssue,
		notEnoughConfigsIssue.Id():     notEnoughConfigsIssue,
		unsupportedFormatIssue.Id():    unsupportedFormatIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
