/*
Package sandbox runs user-authored window scripts inside the editor pane.

A script is compiled with goja as the body of an anonymous constructor and
instantiated once. The instance is expected to assign a draw function:

	this.draw = (ctx) => { ctx.fillRect(0, 0, 10, 10) }

Start mounts a 200x200 canvas on the host element and calls draw about 30
times per second with a 2D context that records drawing commands into a
Frame. A missing draw or a thrown error ends the loop and is reported as a
Diagnostic; compile failures never start the loop. Stop is idempotent and
no draw runs after it returns.

Draggable moves the floating window chrome with pointer events, and
Registry keeps a single active session per editor pane.
*/
package sandbox
