/*
Package portfolio holds the static datasets the editor is built from.

Three datasets are read at manifest-build time:

  - projects:  name, description, technology tags, links, creation year
  - companies: identity key, display name and the ordered project names to feature
  - languages: period -> language -> line count

Each dataset lives in its own file inside a data directory. The format is
chosen by extension (.json, .yaml/.yml, .toml), so a directory may mix them.
A default dataset is compiled into the binary; a data directory on disk
replaces it and can be watched for changes.
*/
package portfolio
