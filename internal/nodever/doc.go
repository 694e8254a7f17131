// Package nodever resolves Node.js version tags ("latest", "lts", "18",
// "20.11") to concrete releases using the nodejs.org distribution index.
// The index is sorted newest first, memoised per Client and cached on disk.
package nodever
