// Package openapi loads the HTTP contract of the site's JSON API and
// validates incoming requests against it with kin-openapi. The contract for
// the contact endpoints is embedded; other documents can be loaded from a
// file or an fs.FS.
package openapi
