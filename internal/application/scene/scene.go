// Package scene defines the Scene interface for viewer screens.
//
// The viewer and the file picker each implement Scene; game.Game runs
// whichever is current and switches when Update hands back another one.
package scene

import "github.com/hajimehoshi/ebiten/v2"

// Scene is one screen of the viewer.
type Scene interface {
	// Update advances the scene by dt seconds (typically 1/60).
	// Returns the next scene if a transition is needed, nil to stay on current scene.
	// Returns an error to terminate the game.
	Update(dt float64) (next Scene, err error)

	// Draw renders the scene to the screen.
	Draw(screen *ebiten.Image)

	// OnEnter is called each time the scene becomes current.
	OnEnter()

	// OnExit is called when leaving this scene, including at shutdown.
	// Scenes that are returned to later keep their resources here.
	OnExit()
}
