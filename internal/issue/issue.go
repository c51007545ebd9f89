// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	VirtualenvNotFoundId Id = iota + 1
	EnvironmentCreationFailedId
	EnvironmentNotFoundId
	ReadonlyEnvironmentId
	PipLaunchFailedId
	PackageInstallFailedId
	PackageRemovalFailedId
	WheelUnsupportedId
	WheelBuildFailedId
	InvalidPipOptionsId
	SearchFailedId
	ConfigLoadFailedId
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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

const (
	virtualenvDocs HttpLink = "https://virtualenv.pypa.io/en/latest/user_guide.html"
	pipInstallDocs HttpLink = "https://pip.pypa.io/en/stable/cli/pip_install/"
	pipWheelDocs   HttpLink = "https://pip.pypa.io/en/stable/cli/pip_wheel/"
)

var (
	render = glamour.Render

	virtualenvNotFoundIssue = &Issue{
		id: VirtualenvNotFoundId,
		mdMsg: `
# virtualenv not found!

The environment does not exist yet and the creation tool could not be started.

## Things you can try:
- Install virtualenv for your interpreter:
~~~
$ python3 -m pip install --user virtualenv
~~~

- Point venvctl at an existing binary in your config file:
~~~cue
virtualenv_binary: "/opt/python/bin/virtualenv"
~~~`,
		extLinks: []HttpLink{virtualenvDocs},
	}

	environmentCreationFailedIssue = &Issue{
		id: EnvironmentCreationFailedId,
		mdMsg: `
# Failed to create the virtual environment!

virtualenv ran but exited with an error. Its output is shown above.

## Common causes:
- The requested interpreter (` + "`python`" + ` in the config, or ` + "`--python`" + `) is not installed
- The parent directory is not writable
- A broken ` + "`site-packages`" + ` in the base interpreter

## Things you can try:
- Run the same command by hand to see the full output:
~~~
$ virtualenv -p python3 .venv
~~~

- Inspect ` + "`build.err`" + ` in the environment directory`,
		extLinks: []HttpLink{virtualenvDocs},
	}

	environmentNotFoundIssue = &Issue{
		id: EnvironmentNotFoundId,
		mdMsg: `
# No virtual environment selected!

venvctl could not work out which environment to operate on.

## Search order:
1. The ` + "`--env`" + ` flag
2. The ` + "`VIRTUAL_ENV`" + ` variable of an activated environment
3. The prefix reported by the configured interpreter

## Things you can try:
- Pass the environment directory explicitly:
~~~
$ venvctl --env .venv freeze
~~~

- Activate the environment first:
~~~
$ source .venv/bin/activate
~~~`,
	}

	readonlyEnvironmentIssue = &Issue{
		id: ReadonlyEnvironmentId,
		mdMsg: `
# The environment is readonly!

Creating environments and changing packages is disabled. Queries such as
` + "`freeze`" + `, ` + "`installed`" + ` and ` + "`search`" + ` still work.

## Things you can try:
- Drop the ` + "`--readonly`" + ` flag
- Set ` + "`readonly: false`" + ` in your config file
- Unset ` + "`VENVCTL_READONLY`" + ``,
	}

	pipLaunchFailedIssue = &Issue{
		id: PipLaunchFailedId,
		mdMsg: `
# pip could not be started!

The environment directory exists but its pip executable could not be run.

## Things you can try:
- Check that ` + "`bin/pip`" + ` (` + "`Scripts\\pip.exe`" + ` on Windows) exists and is executable
- Recreate the environment if the base interpreter was removed or upgraded:
~~~
$ rm -rf .venv && venvctl --env .venv create
~~~`,
	}

	packageInstallFailedIssue = &Issue{
		id: PackageInstallFailedId,
		mdMsg: `
# Package installation failed!

pip exited with an error while installing or upgrading a package.

## Things you can try:
- Check the package name and version on the index
- Inspect ` + "`build.log`" + ` and ` + "`build.err`" + ` in the environment directory
- Force a clean reinstall:
~~~
$ venvctl install --force <package>
~~~`,
		docLinks: []HttpLink{pipInstallDocs},
	}

	packageRemovalFailedIssue = &Issue{
		id: PackageRemovalFailedId,
		mdMsg: `
# Package removal failed!

pip exited with an error while uninstalling a package.

## Things you can try:
- Check that the package was installed into this environment and not the system site
- Inspect ` + "`build.err`" + ` in the environment directory`,
	}

	wheelUnsupportedIssue = &Issue{
		id: WheelUnsupportedId,
		mdMsg: `
# Wheel building is not available!

` + "`pip wheel`" + ` needs the wheel package inside the environment.

## Things you can try:
~~~
$ venvctl install wheel
~~~`,
		docLinks: []HttpLink{pipWheelDocs},
	}

	wheelBuildFailedIssue = &Issue{
		id: WheelBuildFailedId,
		mdMsg: `
# Wheel build failed!

pip exited with an error while building wheel archives.

## Things you can try:
- Make sure the build dependencies (compilers, headers) are installed
- Inspect ` + "`build.err`" + ` in the environment directory`,
		docLinks: []HttpLink{pipWheelDocs},
	}

	invalidPipOptionsIssue = &Issue{
		id: InvalidPipOptionsId,
		mdMsg: `
# Invalid pip options!

Extra options are passed to pip one argument at a time and must not be empty.

## Example:
~~~
$ venvctl install -o --no-deps -o --index-url=https://mirror/simple requests
~~~`,
	}

	searchFailedIssue = &Issue{
		id: SearchFailedId,
		mdMsg: `
# Package search failed!

The package index rejected the search request. PyPI disabled its XML-RPC
search API, so ` + "`pip search`" + ` only works against indexes that still
provide it.

## Things you can try:
- Point pip at an index that supports search:
~~~
$ PIP_INDEX=https://mirror.example/pypi venvctl search requests
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or did not match the schema.

## Things you can try:
- Check the error message above for the line and column
- Print the path venvctl reads from:
~~~
$ venvctl config path
~~~

- Regenerate a default file and edit it:
~~~
$ venvctl config init
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to write to the environment directory.

## Things you can try:
- Check the owner of the environment directory
- Avoid running pip as root inside a shared environment
- Create the environment in a directory you own`,
	}

	issues = map[Id]*Issue{
		virtualenvNotFoundIssue.Id():        virtualenvNotFoundIssue,
		environmentCreationFailedIssue.Id(): environmentCreationFailedIssue,
		environmentNotFoundIssue.Id():       environmentNotFoundIssue,
		readonlyEnvironmentIssue.Id():       readonlyEnvironmentIssue,
		pipLaunchFailedIssue.Id():           pipLaunchFailedIssue,
		packageInstallFailedIssue.Id():      packageInstallFailedIssue,
		packageRemovalFailedIssue.Id():      packageRemovalFailedIssue,
		wheelUnsupportedIssue.Id():          wheelUnsupportedIssue,
		wheelBuildFailedIssue.Id():          wheelBuildFailedIssue,
		invalidPipOptionsIssue.Id():         invalidPipOptionsIssue,
		searchFailedIssue.Id():              searchFailedIssue,
		configLoadFailedIssue.Id():          configLoadFailedIssue,
		permissionDeniedIssue.Id():          permissionDeniedIssue,
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
