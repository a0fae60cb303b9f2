// Package glview hosts a [prismscene.Session] in a GLFW window and renders it with OpenGL.
//
// GLFW must run on the main thread. Programs using this package should call
// runtime.LockOSThread from an init function.
package glview
