package collector

// JS snippets evaluated in the page after stabilization. They are the
// metric-extraction half of the measurement methodology and must stay in
// sync with the published counting rules.

// domElementCountScript counts all elements under the document root, minus
// everything strictly inside an <svg> subtree (an SVG counts as one node),
// plus elements found inside shadow roots and same-origin iframe documents.
// Cross-origin iframes are skipped, not an error.
const domElementCountScript = `
(() => {
	const count = (root) => {
		let n = 0;
		for (const el of root.children) {
			n += 1;
			if (el.tagName && el.tagName.toLowerCase() === 'svg') {
				continue;
			}
			if (el.shadowRoot) {
				n += count(el.shadowRoot);
			}
			if (el.tagName === 'IFRAME') {
				try {
					const doc = el.contentDocument;
					if (doc && doc.documentElement) {
						n += 1 + count(doc.documentElement);
					}
				} catch (e) {
					// cross-origin frame
				}
			}
			n += count(el);
		}
		return n;
	};
	const root = document.documentElement;
	return root ? 1 + count(root) : 0;
})()
`

// documentHeightScript returns the full scrollable height, used to size the
// stabilization scroll gesture.
const documentHeightScript = `
(() => {
	const body = document.body ? document.body.scrollHeight : 0;
	const root = document.documentElement ? document.documentElement.scrollHeight : 0;
	return Math.max(body, root);
})()
`

// htmlSizeScript returns the byte size of the serialized document, added to
// the transfer total like any other resource.
const htmlSizeScript = `new Blob([document.documentElement.outerHTML]).size`

// ttfbScript reads time-to-first-byte from the browser's navigation-timing
// entry. Audit-derived TTFB is unreliable under multi-step navigation, so
// the timing facility is the source of truth here.
const ttfbScript = `
(() => {
	const entries = performance.getEntriesByType('navigation');
	if (!entries.length) {
		return 0;
	}
	const nav = entries[0];
	return nav.responseStart - nav.requestStart;
})()
`
