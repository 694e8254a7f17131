// Package userdata resolves the ~/.imq directory layout: the shared template
// cache, fetched custom templates, cached remote documents, logs and the
// config file. IMQ_HOME relocates the whole tree.
package userdata
