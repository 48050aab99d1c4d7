// Package lint wraps ESLint for bio projects.
//
// Init writes an .eslintrc.json for an es6 or es5 code base from embedded
// templates. Runner delegates linting to `npx eslint`, optionally re-running
// on changes through the same watch loop scaffold tasks use.
package lint
