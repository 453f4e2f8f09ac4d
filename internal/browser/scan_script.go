package browser

// scanScript returns an in-page function taking {maxCandidates, id}. Without an
// id it collects every visible interactive element; with one it describes only
// the element carrying that id attribute (null when absent).
func scanScript() string {
	return `(opts) => {
	const maxCandidates = (opts && opts.maxCandidates) || 300;
	const targetId = (opts && opts.id) || '';
	const ancestorLimit = 25;
	const ancestorTextLimit = 4;
	const textLimit = 2000;

	const interactiveTags = new Set(['a', 'button', 'input', 'select', 'textarea', 'label', 'summary']);
	const interactiveRoles = new Set([
		'button', 'link', 'checkbox', 'menuitem', 'tab', 'radio', 'switch', 'option',
		'combobox', 'textbox', 'searchbox', 'slider', 'treeitem',
	]);
	const classPattern = /(^|[\s_-])(btn|button|link)([\s_-]|$)/i;

	const classOf = (el) => (typeof el.className === 'string' ? el.className : '');
	const clip = (s) => (s || '').slice(0, textLimit);

	const isVisible = (rect, style) =>
		rect.width > 0 &&
		rect.height > 0 &&
		style.display !== 'none' &&
		style.visibility !== 'hidden' &&
		parseFloat(style.opacity || '1') > 0;

	const isInteractive = (el, style) => {
		const tag = el.tagName.toLowerCase();
		if (interactiveTags.has(tag)) return true;
		if (interactiveRoles.has((el.getAttribute('role') || '').toLowerCase())) return true;
		if (el.hasAttribute('onclick')) return true;
		const tabindex = el.getAttribute('tabindex');
		if (tabindex !== null && parseInt(tabindex, 10) >= 0) return true;
		if (classPattern.test(classOf(el))) return true;
		if (style.cursor === 'pointer') {
			const parent = el.parentElement;
			return !(parent && window.getComputedStyle(parent).cursor === 'pointer');
		}
		return false;
	};

	const directText = (el) => {
		let text = '';
		for (const node of el.childNodes) {
			if (node.nodeType === Node.TEXT_NODE) text += node.textContent;
		}
		return text.trim();
	};

	const textOf = (el, tag, type) => {
		let text = directText(el);
		if (!text) text = (el.innerText || el.textContent || '').trim();
		if (!text) {
			const value = type === 'password' ? '' : (typeof el.value === 'string' ? el.value : '');
			text = (el.getAttribute('placeholder') || value || '').trim();
		}
		if (!text && (tag === 'a' || tag === 'button' || el.getAttribute('role') === 'button')) {
			const img = el.querySelector('img[alt]');
			text = el.getAttribute('title') || el.getAttribute('aria-label') || el.getAttribute('alt') ||
				(img ? img.getAttribute('alt') : '') || '';
		}
		return text.replace(/\s+/g, ' ').trim();
	};

	const depthOf = (el) => {
		let depth = 0;
		for (let cur = el; cur.parentElement; cur = cur.parentElement) depth++;
		return depth;
	};

	const ancestorsOf = (el) => {
		const out = [];
		let cur = el.parentElement;
		for (let i = 0; cur && i < ancestorLimit; i++, cur = cur.parentElement) {
			out.push({
				tag: cur.tagName.toLowerCase(),
				role: cur.getAttribute('role') || '',
				id: cur.id || '',
				className: classOf(cur),
				position: (cur.style && cur.style.position) || '',
				ariaModal: cur.hasAttribute('aria-modal'),
				text: i < ancestorTextLimit ? clip(cur.textContent).toLowerCase() : '',
			});
		}
		return out;
	};

	const describe = (el, rect, style) => {
		const tag = el.tagName.toLowerCase();
		const type = (el.getAttribute('type') || '').toLowerCase();
		const parent = el.parentElement;
		return {
			tag,
			type,
			text: textOf(el, tag, type),
			fullText: clip(el.textContent).toLowerCase(),
			placeholder: el.getAttribute('placeholder') || '',
			value: type === 'password' ? (el.value ? '*' : '') : (typeof el.value === 'string' ? el.value : ''),
			name: el.getAttribute('name') || '',
			id: el.id || '',
			className: classOf(el),
			ariaLabel: el.getAttribute('aria-label') || '',
			role: el.getAttribute('role') || '',
			title: el.getAttribute('title') || '',
			alt: el.getAttribute('alt') || '',
			href: el.getAttribute('href') || '',
			parentText: parent ? clip(parent.innerText || parent.textContent || '').replace(/\s+/g, ' ').trim().slice(0, 200) : '',
			position: (el.style && el.style.position) || '',
			ariaModal: el.hasAttribute('aria-modal'),
			clickable: el.hasAttribute('onclick'),
			x: rect.x,
			y: rect.y,
			width: rect.width,
			height: rect.height,
			visible: isVisible(rect, style),
			depth: depthOf(el),
			ancestors: ancestorsOf(el),
		};
	};

	const snapshot = {
		url: location.href,
		title: document.title,
		pageWidth: Math.max(document.documentElement.scrollWidth, document.body ? document.body.scrollWidth : 0),
		pageHeight: Math.max(document.documentElement.scrollHeight, document.body ? document.body.scrollHeight : 0),
		candidates: [],
		skipped: 0,
		error: '',
	};

	if (targetId) {
		const el = document.getElementById(targetId);
		if (!el) return null;
		return describe(el, el.getBoundingClientRect(), window.getComputedStyle(el));
	}

	try {
		for (const el of document.querySelectorAll('body *')) {
			if (snapshot.candidates.length >= maxCandidates) break;
			try {
				const style = window.getComputedStyle(el);
				if (!isInteractive(el, style)) continue;
				const rect = el.getBoundingClientRect();
				if (!isVisible(rect, style)) continue;
				snapshot.candidates.push(describe(el, rect, style));
			} catch (e) {
				snapshot.skipped++;
			}
		}
	} catch (e) {
		snapshot.error = String(e && e.message ? e.message : e);
	}

	return snapshot;
}`
}
