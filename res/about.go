// Package res holds static content shown by the UI.
package res

// AboutContent contains the Markdown content for the About page.
const AboutContent = `Aura picks music for the way you feel.

**How it works:**
- Sign in with Spotify through the Aura backend
- Let the camera sample your expression for a few seconds, or pick a mood yourself
- Get songs matched to your mood and save them as a playlist
- Feeling low? Create a Mood Changer playlist that climbs towards happier songs

Playback runs on a Spotify Connect device of your choice.
`
