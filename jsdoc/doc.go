// Package jsdoc is the gomk tool module for the JSDoc documentation
// generator. Importing the package registers the tool module "jsdoc":
//
//	import _ "git.fractalqb.de/fractalqb/jsdocmk/jsdoc"
//
//	if err := gomk.LoadTools(env, "jsdoc"); err != nil { … }
//
// The module installs the step builder [BuilderName] that runs jsdoc on
// the .js files of the sources and writes the documentation into the one
// target directory. The step's result is the file index.html in that
// directory. Cleaning the step's sources removes the whole directory.
//
// The step is configured with the env tags
//
//	JSDOC_TEMPLATE  template directory, optional
//	JSDOC_FLAGS     extra flags for jsdoc, default ""
//	JSDOC_SUFFIX    suffix of the source files, default ".js"
//	JSDOCCOM        command template, see [DefaultCommand]
//	JSDOCCOMSTR     printed instead of the command line, optional
//	JSDOC           the jsdoc executable, default "jsdoc"
//
// When JSDOC_TEMPLATE is set, all files in the template directory are
// premises of the step, i.e. changing the template rebuilds the docs.
package jsdoc
