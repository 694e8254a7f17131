// Package service implements "imq service create": the provisioning pipeline
// that turns a Request into a ready service directory, optionally backed by
// a new GitHub repository with Travis CI builds and Docker Hub publishing.
//
// Stages run strictly in sequence. Every collaborator that touches the
// outside world (templates cache, GitHub, Travis, the Node release index,
// git and npm) is injected through an interface so the pipeline can run
// against fakes. A failed run removes what it generated locally; a GitHub
// repository that was already created is left in place.
package service
